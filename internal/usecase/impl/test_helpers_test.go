package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"bertron/internal/domain/repository"
	"bertron/internal/errors"
	"bertron/internal/infra/persistence/model"
	"bertron/internal/infra/schema"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unavailable")

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ingestTestSchema enforces only presence and primitive types; the strict
// model check is exercised separately.
const ingestTestSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"version": "9.9.9",
	"type": "object",
	"required": ["id", "uri", "ber_data_source", "entity_type", "coordinates"],
	"properties": {
		"id": {"type": "string"},
		"uri": {"type": "string"},
		"ber_data_source": {"type": "string"},
		"entity_type": {"type": "array", "items": {"type": "string"}},
		"coordinates": {"type": "object"}
	}
}`

func newTestSchema(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.Parse([]byte(ingestTestSchema), "schema.json")
	require.NoError(t, err)

	return v
}

type mockEntityRepository struct {
	mock.Mock
}

func (m *mockEntityRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockEntityRepository) CollectionExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)

	return args.Bool(0), args.Error(1)
}

func (m *mockEntityRepository) Drop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockEntityRepository) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockEntityRepository) UpsertByURI(ctx context.Context, uri string, doc map[string]any) (bool, error) {
	args := m.Called(ctx, uri, doc)

	return args.Bool(0), args.Error(1)
}

func (m *mockEntityRepository) FindAll(ctx context.Context) ([]map[string]any, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).([]map[string]any)

	return docs, args.Error(1)
}

func (m *mockEntityRepository) FindByID(ctx context.Context, id string) (map[string]any, error) {
	args := m.Called(ctx, id)
	doc, _ := args.Get(0).(map[string]any)

	return doc, args.Error(1)
}

func (m *mockEntityRepository) Find(ctx context.Context, filter map[string]any, opts repository.FindOptions) ([]map[string]any, error) {
	args := m.Called(ctx, filter, opts)
	docs, _ := args.Get(0).([]map[string]any)

	return docs, args.Error(1)
}

func (m *mockEntityRepository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, extra map[string]any) ([]map[string]any, error) {
	args := m.Called(ctx, lat, lng, radiusMeters, extra)
	docs, _ := args.Get(0).([]map[string]any)

	return docs, args.Error(1)
}

func (m *mockEntityRepository) FindInBBox(ctx context.Context, bound orb.Bound, extra map[string]any) ([]map[string]any, error) {
	args := m.Called(ctx, bound, extra)
	docs, _ := args.Get(0).([]map[string]any)

	return docs, args.Error(1)
}

// memEntityRepository is a stateful in-memory store keyed on uri, for
// exercising the ingestion pipeline end to end.
type memEntityRepository struct {
	docs       map[string]map[string]any
	dropped    bool
	failUpsert bool
}

func newMemEntityRepository() *memEntityRepository {
	return &memEntityRepository{docs: make(map[string]map[string]any)}
}

func (m *memEntityRepository) Ping(context.Context) error { return nil }

func (m *memEntityRepository) CollectionExists(context.Context) (bool, error) {
	return len(m.docs) > 0, nil
}

func (m *memEntityRepository) Drop(context.Context) error {
	m.docs = make(map[string]map[string]any)
	m.dropped = true

	return nil
}

func (m *memEntityRepository) EnsureIndexes(context.Context) error { return nil }

func (m *memEntityRepository) UpsertByURI(_ context.Context, uri string, doc map[string]any) (bool, error) {
	if m.failUpsert {
		return false, errStore
	}

	_, existed := m.docs[uri]
	m.docs[uri] = doc

	return !existed, nil
}

func (m *memEntityRepository) FindAll(context.Context) ([]map[string]any, error) {
	docs := make([]map[string]any, 0, len(m.docs))
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}

	return docs, nil
}

func (m *memEntityRepository) FindByID(_ context.Context, id string) (map[string]any, error) {
	for _, doc := range m.docs {
		if doc["id"] == id {
			return doc, nil
		}
	}

	return nil, repository.ErrDocumentNotFound
}

func (m *memEntityRepository) Find(context.Context, map[string]any, repository.FindOptions) ([]map[string]any, error) {
	return m.FindAll(context.Background())
}

// FindNearby applies a real great-circle cutoff over the stored geojson
// points, so proximity tests exercise exclusion as well as inclusion.
func (m *memEntityRepository) FindNearby(_ context.Context, lat, lng, radiusMeters float64, _ map[string]any) ([]map[string]any, error) {
	center := orb.Point{lng, lat}
	docs := make([]map[string]any, 0)
	for _, doc := range m.docs {
		geo, ok := doc[model.FieldGeoJSON].(*model.GeoJSON)
		if !ok || len(geo.Coordinates) != 2 {
			continue
		}
		point := orb.Point{geo.Coordinates[0], geo.Coordinates[1]}
		if orbgeo.Distance(center, point) <= radiusMeters {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

func (m *memEntityRepository) FindInBBox(context.Context, orb.Bound, map[string]any) ([]map[string]any, error) {
	return m.FindAll(context.Background())
}
