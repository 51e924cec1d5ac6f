// Package schema loads the published entity JSON Schema and gate-keeps raw
// records against it before they reach the canonical model.
package schema

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	// Enable resolving http(s) schema references.
	_ "github.com/santhosh-tekuri/jsonschema/v5/httploader"
)

const defaultSchemaVersion = "unknown"

// Validator holds a compiled schema and the version it declares. It is
// immutable after construction; the ingestion pipeline loads it once and
// never swaps it out mid-batch.
type Validator struct {
	compiled *jsonschema.Schema
	version  string
}

// Load reads the schema document from a local path or an http(s) URL and
// compiles it. Failure here is a setup error; nothing should be ingested
// without a usable schema.
func Load(location string) (*Validator, error) {
	raw, err := fetch(location)
	if err != nil {
		return nil, err
	}

	return Parse(raw, location)
}

// Parse compiles a schema from raw bytes. The location is used as the
// resource URL for reference resolution and error messages.
func Parse(raw []byte, location string) (*Validator, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse schema document %s", location)
	}

	version := defaultSchemaVersion
	if v, ok := doc["version"].(string); ok && v != "" {
		version = v
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(location, bytes.NewReader(raw)); err != nil {
		return nil, errors.Wrapf(err, "register schema resource %s", location)
	}

	compiled, err := compiler.Compile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "compile schema %s", location)
	}

	return &Validator{compiled: compiled, version: version}, nil
}

// Validate checks a raw record against the schema. The record is only read.
func (v *Validator) Validate(record map[string]any) error {
	if err := v.compiled.Validate(record); err != nil {
		return errors.Wrap(err, "record does not match schema")
	}

	return nil
}

// Version reports the version string declared by the schema document.
func (v *Validator) Version() string {
	return v.version
}

func fetch(location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		resp, err := http.Get(location)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch schema from %s", location)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("fetch schema from %s: unexpected status %s", location, resp.Status)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "read schema body from %s", location)
		}

		return raw, nil
	}

	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "read schema file %s", location)
	}

	return raw, nil
}
