// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"bertron/internal/errors"

	"github.com/paulmach/orb"
)

// ErrDocumentNotFound is returned when no stored document matches a lookup.
var ErrDocumentNotFound = errors.New("entity document not found")

// FindOptions shapes an arbitrary find: field projection, paging and sort
// order. A nil Projection means the caller wants full documents.
type FindOptions struct {
	Projection map[string]any
	Skip       int64
	Limit      int64
	Sort       map[string]any
}

// EntityRepository is the document-store capability contract: upsert-by-key,
// indexed find and geospatial query. Implementations own all store-native
// operator construction; callers pass structured filters through untouched.
//
// Upserts are atomic per document from the store's perspective, so no
// application-level coordination is required across concurrent requests.
type EntityRepository interface {
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// CollectionExists reports whether the entity collection has ever been
	// created. An empty-but-existing collection returns true.
	CollectionExists(ctx context.Context) (bool, error)

	// Drop removes the entire entity collection. Used by the ingest job's
	// explicit clean step, never implicitly.
	Drop(ctx context.Context) error

	// EnsureIndexes idempotently declares the indexes the query surface
	// depends on, including the 2dsphere index backing geo queries.
	EnsureIndexes(ctx context.Context) error

	// UpsertByURI inserts the document or replaces the fields of the
	// existing document sharing its uri. Reports whether a new document
	// was created.
	UpsertByURI(ctx context.Context, uri string, doc map[string]any) (inserted bool, err error)

	// FindAll returns every stored document.
	FindAll(ctx context.Context) ([]map[string]any, error)

	// FindByID returns the document whose logical id matches exactly.
	// Returns ErrDocumentNotFound when absent.
	FindByID(ctx context.Context, id string) (map[string]any, error)

	// Find passes filter and options through to the store's native query
	// capability.
	Find(ctx context.Context, filter map[string]any, opts FindOptions) ([]map[string]any, error)

	// FindNearby returns documents within radiusMeters of the given point,
	// measured as a spherical great-circle distance. The optional extra
	// filter is combined with the spatial predicate via logical AND.
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64, extra map[string]any) ([]map[string]any, error)

	// FindInBBox returns documents contained in the rectangular region.
	// The bound must already satisfy sw < ne on both axes.
	FindInBBox(ctx context.Context, bound orb.Bound, extra map[string]any) ([]map[string]any, error)
}
