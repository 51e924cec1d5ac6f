package mongodb

import (
	"context"
	"log/slog"

	"bertron/internal/domain/repository"
	"bertron/internal/errors"
	"bertron/internal/infra/persistence/model"

	"github.com/paulmach/orb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type entityRepository struct {
	db         *mongo.Database
	collection string
	logger     *slog.Logger
}

// NewEntityRepository creates the MongoDB-backed entity repository over the
// named collection.
func NewEntityRepository(db *mongo.Database, collection string, logger *slog.Logger) repository.EntityRepository {
	return &entityRepository{
		db:         db,
		collection: collection,
		logger:     logger,
	}
}

func (r *entityRepository) coll() *mongo.Collection {
	return r.db.Collection(r.collection)
}

func (r *entityRepository) Ping(ctx context.Context) error {
	if err := r.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "ping database")
	}

	return nil
}

func (r *entityRepository) CollectionExists(ctx context.Context) (bool, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.M{"name": r.collection})
	if err != nil {
		return false, errors.Wrap(err, "list collection names")
	}

	return len(names) > 0, nil
}

func (r *entityRepository) Drop(ctx context.Context) error {
	if err := r.coll().Drop(ctx); err != nil {
		return errors.Wrapf(err, "drop collection %s", r.collection)
	}

	return nil
}

func (r *entityRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uri", Value: 1}}},
		// The id index stays advisory (non-unique): upserts are keyed on
		// uri, and not every source guarantees stable unique ids yet.
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "ber_data_source", Value: 1}}},
		{Keys: bson.D{{Key: "entity_type", Value: 1}}},
		{Keys: bson.D{{Key: model.FieldGeoJSON, Value: "2dsphere"}}},
	}

	if _, err := r.coll().Indexes().CreateMany(ctx, indexes); err != nil {
		return errors.Wrap(err, "create indexes")
	}

	return nil
}

func (r *entityRepository) UpsertByURI(ctx context.Context, uri string, doc map[string]any) (bool, error) {
	result, err := r.coll().UpdateOne(ctx,
		bson.M{"uri": uri},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, errors.Wrapf(err, "upsert entity %s", uri)
	}

	return result.UpsertedID != nil, nil
}

func (r *entityRepository) FindAll(ctx context.Context) ([]map[string]any, error) {
	cursor, err := r.coll().Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "find all entities")
	}

	return drain(ctx, cursor)
}

func (r *entityRepository) FindByID(ctx context.Context, id string) (map[string]any, error) {
	var doc map[string]any
	err := r.coll().FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrDocumentNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find entity by id %s", id)
	}

	return doc, nil
}

func (r *entityRepository) Find(ctx context.Context, filter map[string]any, opts repository.FindOptions) ([]map[string]any, error) {
	findOpts := options.Find().SetSkip(opts.Skip).SetLimit(opts.Limit)
	if opts.Projection != nil {
		findOpts = findOpts.SetProjection(opts.Projection)
	}
	if opts.Sort != nil {
		findOpts = findOpts.SetSort(opts.Sort)
	}

	if filter == nil {
		filter = map[string]any{}
	}

	cursor, err := r.coll().Find(ctx, filter, findOpts)
	if err != nil {
		return nil, errors.Wrap(err, "find entities")
	}

	return drain(ctx, cursor)
}

func (r *entityRepository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, extra map[string]any) ([]map[string]any, error) {
	// $near with $maxDistance is a strict spherical cutoff, not a
	// rank-then-truncate.
	spatial := map[string]any{
		model.FieldGeoJSON: bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}

	cursor, err := r.coll().Find(ctx, combine(spatial, extra))
	if err != nil {
		return nil, errors.Wrap(err, "find nearby entities")
	}

	return drain(ctx, cursor)
}

func (r *entityRepository) FindInBBox(ctx context.Context, bound orb.Bound, extra map[string]any) ([]map[string]any, error) {
	spatial := map[string]any{
		model.FieldGeoJSON: bson.M{
			"$geoWithin": bson.M{
				"$geometry": bson.M{
					"type":        "Polygon",
					"coordinates": []any{boundRing(bound)},
				},
			},
		},
	}

	cursor, err := r.coll().Find(ctx, combine(spatial, extra))
	if err != nil {
		return nil, errors.Wrap(err, "find entities in bounding box")
	}

	return drain(ctx, cursor)
}

// boundRing builds the closed polygon ring for a bounding box, counterclockwise
// from the southwest corner, longitude first.
func boundRing(bound orb.Bound) [][]float64 {
	ring := bound.ToPolygon()[0]
	coords := make([][]float64, 0, len(ring))
	for _, point := range ring {
		coords = append(coords, []float64{point.Lon(), point.Lat()})
	}

	return coords
}

// combine joins a spatial predicate with an optional caller-supplied filter
// via logical AND.
func combine(spatial, extra map[string]any) any {
	if len(extra) == 0 {
		return spatial
	}

	return bson.M{"$and": []any{spatial, extra}}
}

func drain(ctx context.Context, cursor *mongo.Cursor) ([]map[string]any, error) {
	docs := make([]map[string]any, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode result documents")
	}

	return docs, nil
}
