package impl

import (
	"context"
	"log/slog"

	"bertron/internal/domain/entity"
	domainerrors "bertron/internal/domain/errors"
	"bertron/internal/domain/repository"
	"bertron/internal/errors"
	"bertron/internal/usecase"

	"github.com/paulmach/orb"
)

type queryService struct {
	repo   repository.EntityRepository
	logger *slog.Logger
}

// NewQueryService creates the read-only query service. The repository is an
// injected dependency so tests can substitute an in-memory implementation.
func NewQueryService(repo repository.EntityRepository, logger *slog.Logger) usecase.EntityUsecase {
	return &queryService{
		repo:   repo,
		logger: logger,
	}
}

func (s *queryService) GetAll(ctx context.Context) ([]*entity.Entity, error) {
	if err := s.requireCollection(ctx); err != nil {
		return nil, err
	}

	docs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, domainerrors.NewQueryError(errors.Cause(err))
	}

	return s.toEntities(docs)
}

func (s *queryService) GetByID(ctx context.Context, id string) (*entity.Entity, error) {
	if err := s.requireCollection(ctx); err != nil {
		return nil, err
	}

	doc, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, domainerrors.ErrEntityNotFound.WithDetails("no entity with id " + id)
	}
	if err != nil {
		return nil, domainerrors.NewQueryError(errors.Cause(err))
	}

	ent, err := entity.FromDocument(doc)
	if err != nil {
		s.logger.Error("Stored document failed entity reconstruction",
			slog.String("id", id), slog.Any("error", err))

		return nil, domainerrors.ErrEntityCorrupt.WithDetails(err.Error())
	}

	return ent, nil
}

func (s *queryService) Find(ctx context.Context, input *usecase.FindInput) (*usecase.FindResult, error) {
	if err := s.requireCollection(ctx); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = usecase.DefaultLimit
	}

	docs, err := s.repo.Find(ctx, input.Filter, repository.FindOptions{
		Projection: input.Projection,
		Skip:       input.Skip,
		Limit:      limit,
		Sort:       input.Sort,
	})
	if err != nil {
		return nil, domainerrors.NewQueryError(errors.Cause(err))
	}

	// A projection means the caller asked for a field subset: partial
	// documents cannot satisfy the entity model, so they are returned raw.
	if input.Projection != nil {
		return &usecase.FindResult{Mode: usecase.FindModeRaw, Documents: docs}, nil
	}

	entities, err := s.toEntities(docs)
	if err != nil {
		return nil, err
	}

	return &usecase.FindResult{Mode: usecase.FindModeEntities, Entities: entities}, nil
}

func (s *queryService) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, extra map[string]any) ([]*entity.Entity, error) {
	if err := s.requireCollection(ctx); err != nil {
		return nil, err
	}

	docs, err := s.repo.FindNearby(ctx, lat, lng, radiusMeters, extra)
	if err != nil {
		return nil, domainerrors.NewQueryError(errors.Cause(err))
	}

	return s.toEntities(docs)
}

func (s *queryService) FindInBBox(ctx context.Context, swLat, swLng, neLat, neLng float64, extra map[string]any) ([]*entity.Entity, error) {
	if swLat >= neLat || swLng >= neLng {
		return nil, domainerrors.ErrInvalidBoundingBox
	}

	if err := s.requireCollection(ctx); err != nil {
		return nil, err
	}

	bound := orb.Bound{
		Min: orb.Point{swLng, swLat},
		Max: orb.Point{neLng, neLat},
	}

	docs, err := s.repo.FindInBBox(ctx, bound, extra)
	if err != nil {
		return nil, domainerrors.NewQueryError(errors.Cause(err))
	}

	return s.toEntities(docs)
}

func (s *queryService) DatabaseHealthy(ctx context.Context) bool {
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Warn("Database health probe failed", slog.Any("error", err))

		return false
	}

	return true
}

// requireCollection distinguishes "collection never created" (the ingest job
// has not run: a setup error reported as not-found) from an empty collection,
// which is a valid zero-count result.
func (s *queryService) requireCollection(ctx context.Context) error {
	exists, err := s.repo.CollectionExists(ctx)
	if err != nil {
		return domainerrors.NewQueryError(errors.Cause(err))
	}
	if !exists {
		return domainerrors.ErrCollectionNotFound
	}

	return nil
}

func (s *queryService) toEntities(docs []map[string]any) ([]*entity.Entity, error) {
	entities := make([]*entity.Entity, 0, len(docs))
	for _, doc := range docs {
		ent, err := entity.FromDocument(doc)
		if err != nil {
			s.logger.Error("Stored document failed entity reconstruction", slog.Any("error", err))

			return nil, domainerrors.ErrEntityCorrupt.WithDetails(err.Error())
		}
		entities = append(entities, ent)
	}

	return entities, nil
}
