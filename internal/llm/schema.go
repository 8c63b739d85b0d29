package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON Schema describing an expected model output.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles doc, a JSON Schema expressed as a generic map.
func CompileSchema(name string, doc map[string]any) (*Schema, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schemas.
func MustCompileSchema(name string, doc map[string]any) *Schema {
	s, err := CompileSchema(name, doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Validate checks a value decoded with encoding/json against the schema.
func (s *Schema) Validate(v any) error {
	if err := s.compiled.Validate(v); err != nil {
		return &ValidationError{Field: s.name, Reason: err.Error()}
	}
	return nil
}

// ValidateRaw decodes data and validates it.
func (s *Schema) ValidateRaw(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &ValidationError{Field: s.name, Reason: err.Error()}
	}
	return s.Validate(v)
}

// NullableString is a schema fragment for an optional string field.
func NullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}
