// Package usecase defines the application-layer contracts between the HTTP
// delivery and the domain services.
package usecase

import (
	"context"

	"bertron/internal/domain/entity"
)

// Find paging bounds. Limits outside [MinLimit, MaxLimit] are rejected at the
// binding layer; a zero limit falls back to DefaultLimit.
const (
	DefaultLimit int64 = 100
	MinLimit     int64 = 1
	MaxLimit     int64 = 1000
)

// FindInput carries an arbitrary structured filter through to the store's
// native query capability, plus paging, sort and an optional projection.
// Passing the filter through verbatim is an intentional escape hatch for
// expressive querying under the current trust model.
type FindInput struct {
	Filter     map[string]any `json:"filter"`
	Projection map[string]any `json:"projection,omitempty"`
	Skip       int64          `json:"skip"`
	Limit      int64          `json:"limit"`
	Sort       map[string]any `json:"sort,omitempty"`
}

// FindMode tags the two response variants of a find.
type FindMode int

const (
	// FindModeEntities means full canonical entities were reconstructed.
	FindModeEntities FindMode = iota

	// FindModeRaw means raw projected documents are returned as-is: a
	// field subset cannot satisfy the entity model's required fields, so
	// no reconstruction is attempted.
	FindModeRaw
)

// FindResult is a tagged union of the two find response variants, selected
// explicitly by whether the caller supplied a projection.
type FindResult struct {
	Mode      FindMode
	Entities  []*entity.Entity
	Documents []map[string]any
}

// Count reports the number of results regardless of variant.
func (r *FindResult) Count() int {
	if r.Mode == FindModeRaw {
		return len(r.Documents)
	}

	return len(r.Entities)
}

// EntityUsecase is the read-only query surface over stored entities. Every
// operation verifies the collection exists before querying and sanitizes
// documents on the way out.
type EntityUsecase interface {
	// GetAll returns every stored entity, reconstructed canonically.
	GetAll(ctx context.Context) ([]*entity.Entity, error)

	// GetByID returns the entity with the exact logical id, or a not-found
	// error, never an empty success.
	GetByID(ctx context.Context, id string) (*entity.Entity, error)

	// Find runs an arbitrary structured query; see FindResult for the
	// two-mode response contract.
	Find(ctx context.Context, input *FindInput) (*FindResult, error)

	// FindNearby returns entities within radiusMeters of the point,
	// optionally narrowed by an extra filter ANDed with the spatial
	// predicate.
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64, extra map[string]any) ([]*entity.Entity, error)

	// FindInBBox returns entities inside the rectangle; the southwest
	// corner must be strictly south-west of the northeast corner.
	FindInBBox(ctx context.Context, swLat, swLng, neLat, neLng float64, extra map[string]any) ([]*entity.Entity, error)

	// DatabaseHealthy reports store reachability for the health probe.
	DatabaseHealthy(ctx context.Context) bool
}
