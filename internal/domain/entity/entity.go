// Package entity contains the canonical record representation shared by the
// ingestion and query layers.
package entity

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// DataSource identifies the federated repository a record originated from.
// The set is closed in practice; new sources require a schema release.
type DataSource string

const (
	SourceEMSL    DataSource = "EMSL"
	SourceESSDive DataSource = "ESS-DIVE"
	SourceNMDC    DataSource = "NMDC"
	SourceJGI     DataSource = "JGI"
)

// Entity is the canonical sample/record representation exposed by the API.
// Storage-only fields (geojson, _metadata) are deliberately not part of this
// struct; the field set below doubles as the sanitization allowlist.
type Entity struct {
	// ID is the globally unique logical identifier, e.g. "EMSL:<uuid>",
	// "doi:<doi>" or "nmdc:<id>". Intended unique, but deduplication is
	// keyed on URI.
	ID string `json:"id" bson:"id" validate:"required"`

	// URI is the source-system URI and the upsert key: re-ingesting a
	// record with the same URI replaces the stored document in place.
	URI string `json:"uri" bson:"uri" validate:"required"`

	Name        *string `json:"name" bson:"name,omitempty"`
	Description *string `json:"description" bson:"description,omitempty"`

	BERDataSource DataSource `json:"ber_data_source" bson:"ber_data_source" validate:"required,oneof=EMSL ESS-DIVE NMDC JGI"`

	// EntityType classifies the record, e.g. ["sample"] or ["study"].
	EntityType []string `json:"entity_type" bson:"entity_type" validate:"required,min=1,dive,required"`

	Coordinates *Coordinates `json:"coordinates" bson:"coordinates" validate:"required"`

	// Properties carries source-specific extended metadata that does not
	// map onto top-level fields (e.g. depth or elevation reported by NMDC).
	Properties []Property `json:"properties,omitempty" bson:"properties,omitempty"`
}

// Coordinates is the declared geographic position of a record. Depth and
// elevation are secondary measurements whose shape varies per source, so they
// stay untyped.
type Coordinates struct {
	Latitude  *float64 `json:"latitude" bson:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" bson:"longitude" validate:"required,min=-180,max=180"`
	Depth     any      `json:"depth,omitempty" bson:"depth,omitempty"`
	Elevation any      `json:"elevation,omitempty" bson:"elevation,omitempty"`
}

// Property is a single attribute/value pair of extended metadata.
type Property struct {
	Attribute Attribute `json:"attribute" bson:"attribute" validate:"required"`
	Value     any       `json:"value,omitempty" bson:"value,omitempty"`
}

// Attribute names a property.
type Attribute struct {
	Label string `json:"label" bson:"label" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the strict model check: required fields, numeric ranges and
// the data-source enum. This is intentionally separate from the external
// JSON Schema check, which may be looser and evolves independently.
func (e *Entity) Validate() error {
	if err := validate.Struct(e); err != nil {
		return errors.Wrap(err, "entity failed model validation")
	}

	return nil
}

// FromRecord decodes a raw record into a strictly validated Entity. The input
// map is not modified.
func FromRecord(record map[string]any) (*Entity, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "marshal record")
	}

	var ent Entity
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, errors.Wrap(err, "decode record into entity")
	}

	if err := ent.Validate(); err != nil {
		return nil, err
	}

	return &ent, nil
}
