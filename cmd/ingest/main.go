// Command ingest loads entity records into the document store: it validates
// each record against the published schema and the canonical model, derives
// the geospatial index field, and upserts keyed on uri.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"bertron/internal/domain/lifecycle"
	"bertron/internal/infra/persistence/mongodb"
	"bertron/internal/infra/schema"
	"bertron/internal/usecase"
	"bertron/internal/usecase/impl"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultSchemaURL = "https://raw.githubusercontent.com/ber-data/bertron-schema/v0.1.0-alpha.11/src/schema/jsonschema/bertron_schema.json"

func main() {
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName := flag.String("db-name", "bertron", "MongoDB database name")
	collection := flag.String("collection", "entities", "Entity collection name")
	schemaPath := flag.String("schema-path", defaultSchemaURL, "Path or URL to the entity schema JSON file")
	input := flag.String("input", "", "Path to the input JSON file or directory (required)")
	clean := flag.Bool("clean", false, "Delete the existing entity collection before ingesting")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if *input == "" {
		logger.Error("Missing required -input flag")
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	// Setup failures are fatal: nothing is processed without a reachable
	// store and a usable schema.
	client, err := mongodb.Connect(ctx, *mongoURI)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect from MongoDB", slog.Any("error", err))
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Error("Failed to reach MongoDB", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB",
		slog.String("uri", *mongoURI), slog.String("database", *dbName))

	schemaValidator, err := schema.Load(*schemaPath)
	if err != nil {
		logger.Error("Failed to load schema",
			slog.String("path", *schemaPath), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Loaded schema",
		slog.String("path", *schemaPath), slog.String("version", schemaValidator.Version()))

	repo := mongodb.NewEntityRepository(client.Database(*dbName), *collection, logger)
	ingestor := impl.NewIngestService(repo, schemaValidator, logger)

	if *clean {
		logger.Info("Clean flag enabled - removing existing entity collection")
		if err := ingestor.Clean(ctx); err != nil {
			logger.Error("Failed to clean entity collection", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Declare indexes before ingesting; index failure degrades queries but
	// does not block the batch.
	if err := ingestor.EnsureIndexes(ctx); err != nil {
		logger.Error("Failed to create indexes", slog.Any("error", err))
	}

	var total usecase.Stats

	info, err := os.Stat(*input)
	if err != nil {
		logger.Error("Cannot access input path",
			slog.String("path", *input), slog.Any("error", err))
		os.Exit(1)
	}

	if info.IsDir() {
		total, err = ingestor.IngestDirectory(ctx, *input)
		if err != nil {
			logger.Error("Failed to ingest directory",
				slog.String("path", *input), slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Info("Processing file", slog.String("path", *input))
		total = ingestor.IngestFile(ctx, *input)
	}

	logger.Info("Ingestion completed",
		slog.Int("processed", total.Processed),
		slog.Int("valid", total.Valid),
		slog.Int("invalid", total.Invalid),
		slog.Int("inserted", total.Inserted),
		slog.Int("error", total.Error),
	)
}
