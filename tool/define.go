package tool

import (
	"context"
	"encoding/json"

	"github.com/lunarhue/agentic/core"
)

// Define builds a Tool whose argument schema is derived from the struct type
// A. Validated arguments are decoded into A before the typed handler runs,
// so handlers work with real Go types instead of raw maps.
//
//	type weatherArgs struct {
//		City string `json:"city" jsonschema:"description=City to look up"`
//	}
//	tl, err := tool.Define("get_weather", "Current weather for a city",
//		func(ctx context.Context, rt tool.Runtime, args weatherArgs) (any, error) {
//			return lookup(ctx, args.City)
//		})
func Define[A any](name, description string, fn func(ctx context.Context, rt Runtime, args A) (any, error), opts ...Option) (*Tool, error) {
	if fn == nil {
		return nil, core.NewInputError("tool '%s' requires a handler", name)
	}
	var zero A
	schema := SchemaFor(zero)

	handler := func(ctx context.Context, rt Runtime, raw map[string]any) (any, error) {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, core.NewToolCallError("arguments for tool '%s' are not serializable", name).Wrap(err)
		}
		var args A
		if err := json.Unmarshal(data, &args); err != nil {
			return nil, core.NewToolCallError("arguments for tool '%s' do not decode", name).Wrap(err)
		}
		return fn(ctx, rt, args)
	}

	return New(name, description, handler, append([]Option{WithInputSchema(schema)}, opts...)...)
}
