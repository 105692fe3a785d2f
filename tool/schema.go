package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaFor derives a JSON schema map from a Go struct value via reflection.
// Definitions are inlined, struct fields without omitempty or pointer types
// are required, and objects reject unknown properties. Field descriptions
// come from `jsonschema:"description=..."` tags.
func SchemaFor(v any) map[string]any {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)

	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	stripSchemaMeta(out)
	return out
}

// stripSchemaMeta removes dialect and identity keys that only add noise on
// the wire.
func stripSchemaMeta(schema map[string]any) {
	delete(schema, "$schema")
	delete(schema, "$id")
}
