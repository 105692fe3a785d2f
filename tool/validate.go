package tool

import (
	"bytes"
	"encoding/json"

	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// compileSchema turns a raw schema map into a reusable validator. The name
// only identifies the schema in validation error messages.
func compileSchema(name string, schema map[string]any) (*validator.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	compiler := validator.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

// normalizeForValidation round-trips a value through JSON so programmatically
// built argument maps (Go ints, typed slices) validate the same as decoded
// wire payloads.
func normalizeForValidation(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
