// Package model holds the storage-only document shapes layered on top of the
// canonical entity fields. Nothing in this package crosses the API boundary;
// the sanitization allowlist strips it on the way out.
package model

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Field names of the storage-only additions to an entity document.
const (
	FieldGeoJSON  = "geojson"
	FieldMetadata = "_metadata"
)

// GeoJSON is the derived geospatial index field: a GeoJSON Point with
// longitude first, as required by the store's spherical query operators.
type GeoJSON struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoJSONPoint builds the GeoJSON representation of a point.
func NewGeoJSONPoint(p orb.Point) *GeoJSON {
	return &GeoJSON{
		Type:        "Point",
		Coordinates: []float64{p.Lon(), p.Lat()},
	}
}

// Metadata records when a document was ingested and under which schema
// version, so schema drift can be diagnosed later.
type Metadata struct {
	IngestedAt    time.Time `bson:"ingested_at" json:"ingested_at"`
	SchemaVersion string    `bson:"schema_version" json:"schema_version"`
}

// NewMetadata stamps ingest metadata with the current UTC time.
func NewMetadata(schemaVersion string) *Metadata {
	return &Metadata{
		IngestedAt:    time.Now().UTC(),
		SchemaVersion: schemaVersion,
	}
}

// ProjectGeoJSON derives the geospatial point from a record's declared
// coordinates. The record is only read, never modified. A missing or
// malformed coordinates object is a hard failure for the record: the caller
// skips it and counts it against the batch's error counter.
func ProjectGeoJSON(record map[string]any) (*GeoJSON, error) {
	raw, ok := record["coordinates"]
	if !ok {
		return nil, errors.New("record has no coordinates field")
	}

	coords, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("coordinates field is not an object")
	}

	lat, err := numericField(coords, "latitude")
	if err != nil {
		return nil, err
	}
	lng, err := numericField(coords, "longitude")
	if err != nil {
		return nil, err
	}

	return NewGeoJSONPoint(orb.Point{lng, lat}), nil
}

func numericField(coords map[string]any, name string) (float64, error) {
	value, ok := coords[name]
	if !ok {
		return 0, errors.Errorf("coordinates object has no %s field", name)
	}

	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.Errorf("coordinates %s is not numeric", name)
	}
}
