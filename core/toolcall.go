package core

import "encoding/json"

// ToolCall is the wire-neutral unit of one tool invocation request as
// extracted from a model response.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments any
}

// NormalizeArguments coerces provider-shaped tool-call arguments into the
// canonical form: maps pass through, strings that decode to a JSON object
// are parsed, other strings pass through raw, anything else becomes an
// empty map.
func NormalizeArguments(v any) any {
	switch args := v.(type) {
	case map[string]any:
		return args
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(args), &parsed); err == nil {
			return parsed
		}
		return args
	case nil:
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// ArgumentsMap reduces normalized arguments to a map for validation and
// dispatch. Raw strings that never parsed as objects yield (nil, false).
func ArgumentsMap(v any) (map[string]any, bool) {
	switch args := v.(type) {
	case map[string]any:
		return args, true
	case nil:
		return map[string]any{}, true
	default:
		return nil, false
	}
}
