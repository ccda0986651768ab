// Package schema compiles JSON Schema documents and validates decoded JSON values
// against them. Tool argument schemas are reflected from Go structs so the struct stays
// the single source of truth for both the prompt and the validator.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema holds the raw schema map (for prompts and API listings) and its compiled
// validator.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the schema document.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// JSON returns the schema document serialized compactly.
func (s *Schema) JSON() string {
	if s == nil {
		return "{}"
	}
	data, err := json.Marshal(s.raw)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Validate checks an already-decoded JSON value against the schema.
func (s *Schema) Validate(v any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(v); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps a validator failure with a single-line message suitable for
// feeding back to a model.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	lines := strings.Split(e.Err.Error(), "\n")
	parts := make([]string, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		// first line only names the schema resource
		if i == 0 && strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		if line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) == 0 {
		return "schema validation failed"
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error. Use it for package-level schemas.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Reflect builds a schema document from the Go type T. Fields without `omitempty` are
// required, unknown properties are rejected, and constraints come from `jsonschema`
// struct tags.
func Reflect[T any]() (map[string]any, error) {
	r := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	reflected := r.Reflect(new(T))

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal reflected schema: %w", err)
	}
	delete(raw, "$id")
	if _, ok := raw["properties"]; !ok {
		raw["properties"] = map[string]any{}
	}
	return raw, nil
}

// Decode parses exactly one JSON value into a form the validator understands. Numbers
// keep their textual precision; trailing content is an error.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected content after top-level value")
	}
	return doc, nil
}
