package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bertron/internal/domain/entity"
	"bertron/internal/domain/repository"
	"bertron/internal/errors"
	"bertron/internal/infra/persistence/model"
	"bertron/internal/infra/schema"
	"bertron/internal/usecase"
)

type ingestService struct {
	repo   repository.EntityRepository
	schema *schema.Validator
	logger *slog.Logger
}

// NewIngestService creates the ingestion pipeline. The schema validator is
// loaded by the caller before construction and held immutably for the life of
// the pipeline.
func NewIngestService(repo repository.EntityRepository, schemaValidator *schema.Validator, logger *slog.Logger) usecase.IngestUsecase {
	return &ingestService{
		repo:   repo,
		schema: schemaValidator,
		logger: logger,
	}
}

func (s *ingestService) IngestFile(ctx context.Context, path string) usecase.Stats {
	var stats usecase.Stats

	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("Failed to read input file",
			slog.String("path", path), slog.Any("error", err))
		stats.Error++

		return stats
	}

	records, err := decodeRecords(raw)
	if err != nil {
		s.logger.Error("Failed to parse input file",
			slog.String("path", path), slog.Any("error", err))
		stats.Error++

		return stats
	}

	stats.Processed = len(records)
	for _, record := range records {
		s.ingestRecord(ctx, record, &stats)
	}

	return stats
}

// ingestRecord runs one record through validate, annotate, project and
// upsert. Failures are counted and skipped; they never abort the batch.
func (s *ingestService) ingestRecord(ctx context.Context, record map[string]any, stats *usecase.Stats) {
	if err := s.schema.Validate(record); err != nil {
		s.logger.Error("Record failed schema validation",
			slog.String("entity", displayName(record)), slog.Any("error", err))
		stats.Invalid++

		return
	}

	ent, err := entity.FromRecord(record)
	if err != nil {
		s.logger.Error("Record failed model validation",
			slog.String("entity", displayName(record)), slog.Any("error", err))
		stats.Invalid++

		return
	}
	stats.Valid++

	geo, err := model.ProjectGeoJSON(record)
	if err != nil {
		s.logger.Error("Invalid coordinates for entity",
			slog.String("entity", displayName(record)), slog.Any("error", err))
		stats.Error++

		return
	}

	// Assemble the stored document without touching the source record.
	doc := make(map[string]any, len(record)+2)
	for key, value := range record {
		doc[key] = value
	}
	doc[model.FieldMetadata] = model.NewMetadata(s.schema.Version())
	doc[model.FieldGeoJSON] = geo

	inserted, err := s.repo.UpsertByURI(ctx, ent.URI, doc)
	if err != nil {
		s.logger.Error("Failed to upsert entity",
			slog.String("entity", displayName(record)), slog.Any("error", err))
		stats.Error++

		return
	}

	if inserted {
		stats.Inserted++
		s.logger.Info("Inserted entity", slog.String("entity", displayName(record)))
	} else {
		s.logger.Info("Updated entity", slog.String("entity", displayName(record)))
	}
}

func (s *ingestService) IngestDirectory(ctx context.Context, path string) (usecase.Stats, error) {
	var total usecase.Stats

	entries, err := os.ReadDir(path)
	if err != nil {
		return total, errors.Wrapf(err, "read input directory %s", path)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		filePath := filepath.Join(path, entry.Name())
		s.logger.Info("Processing file", slog.String("path", filePath))
		total.Add(s.IngestFile(ctx, filePath))
	}

	return total, nil
}

func (s *ingestService) Clean(ctx context.Context) error {
	exists, err := s.repo.CollectionExists(ctx)
	if err != nil {
		return errors.Wrap(err, "check entity collection")
	}
	if !exists {
		s.logger.Info("No existing entity collection found")

		return nil
	}

	s.logger.Info("Dropping existing entity collection")
	if err := s.repo.Drop(ctx); err != nil {
		return errors.Wrap(err, "drop entity collection")
	}

	return nil
}

func (s *ingestService) EnsureIndexes(ctx context.Context) error {
	s.logger.Info("Creating indexes on entity collection")
	if err := s.repo.EnsureIndexes(ctx); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	return nil
}

// decodeRecords accepts either a single JSON object or an array of objects.
func decodeRecords(raw []byte) ([]map[string]any, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "parse JSON")
	}

	switch value := payload.(type) {
	case map[string]any:
		return []map[string]any{value}, nil
	case []any:
		records := make([]map[string]any, 0, len(value))
		for _, item := range value {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, errors.New("array element is not a JSON object")
			}
			records = append(records, record)
		}

		return records, nil
	default:
		return nil, errors.New("input is neither a JSON object nor an array of objects")
	}
}

func displayName(record map[string]any) string {
	if name, ok := record["name"].(string); ok && name != "" {
		return name
	}
	if id, ok := record["id"].(string); ok && id != "" {
		return id
	}

	return "unnamed"
}
