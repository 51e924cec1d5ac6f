package main

import (
	"context"
	"log/slog"
	"os"

	"bertron/config"
	"bertron/internal/delivery"
	"bertron/internal/delivery/http"
	"bertron/internal/delivery/http/middleware"
	"bertron/internal/delivery/http/router/handler"
	"bertron/internal/domain/repository"
	logs "bertron/internal/infra/log"
	"bertron/internal/infra/persistence/mongodb"
	"bertron/internal/usecase/impl"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		mongodb.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newEntityRepository,
		),
	)
}

// newEntityRepository binds the configured collection name to the repository.
func newEntityRepository(db *mongo.Database, cfg *config.Config, logger *slog.Logger) repository.EntityRepository {
	return mongodb.NewEntityRepository(db, cfg.Mongo.Collection, logger)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewQueryService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewEntityHandler,
			handler.NewSystemHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
