package entity

// canonicalFields is the allowlist derived from the Entity model. Anything
// outside this set is a storage concern (geojson, _metadata, _id) and must
// never cross the API boundary.
var canonicalFields = map[string]struct{}{
	"id":              {},
	"uri":             {},
	"name":            {},
	"description":     {},
	"ber_data_source": {},
	"entity_type":     {},
	"coordinates":     {},
	"properties":      {},
}

// Sanitize returns a new map holding only the canonical Entity fields of doc.
// The input document is left untouched, so callers may safely reuse it.
func Sanitize(doc map[string]any) map[string]any {
	clean := make(map[string]any, len(canonicalFields))
	for key, value := range doc {
		if _, ok := canonicalFields[key]; ok {
			clean[key] = value
		}
	}

	return clean
}

// FromDocument reconstructs a canonical Entity from a stored document:
// allowlist projection first, then strict decoding. An error here means the
// stored document no longer satisfies the model (schema drift between
// ingest time and read time).
func FromDocument(doc map[string]any) (*Entity, error) {
	return FromRecord(Sanitize(doc))
}
