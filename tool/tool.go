// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (APIs, computations, side effects) with
// schema-validated arguments and consistent error handling.
//
// A Tool couples a name and description with a JSON schema for its arguments
// and a handler that executes the call. Schemas can be supplied raw via
// WithInputSchema or derived from a Go struct with Define. Invoke applies the
// validation and error policy the runner relies on: invalid arguments and
// handler failures come back as recoverable tool errors, handler panics as
// fatal execution errors.
package tool

import (
	"context"
	"encoding/json"

	"github.com/lunarhue/agentic/core"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// Handler executes one tool call with validated arguments.
type Handler func(ctx context.Context, rt Runtime, args map[string]any) (any, error)

// Tool is a named capability the model can request. Construct with New or
// Define; the zero value is not usable.
type Tool struct {
	name        string
	description string
	strict      bool

	inputSchema  map[string]any
	outputSchema map[string]any

	compiledInput  *validator.Schema
	compiledOutput *validator.Schema

	handler Handler
}

// Option customizes a Tool under construction.
type Option func(*Tool)

// WithInputSchema supplies a raw JSON schema for the tool's arguments,
// replacing the default empty-object schema. The schema is compiled at
// construction and enforced on every call.
func WithInputSchema(schema map[string]any) Option {
	return func(t *Tool) { t.inputSchema = schema }
}

// WithOutputSchema supplies a JSON schema the tool's result must satisfy.
func WithOutputSchema(schema map[string]any) Option {
	return func(t *Tool) { t.outputSchema = schema }
}

// WithStrict marks the tool for strict argument decoding on providers that
// support it.
func WithStrict() Option {
	return func(t *Tool) { t.strict = true }
}

// New builds a Tool from a name, a model-facing description and a handler.
// Without WithInputSchema the tool accepts only an empty argument object.
func New(name, description string, handler Handler, opts ...Option) (*Tool, error) {
	if name == "" {
		return nil, core.NewInputError("tool name must not be empty")
	}
	if handler == nil {
		return nil, core.NewInputError("tool '%s' requires a handler", name)
	}

	t := &Tool{
		name:        name,
		description: description,
		handler:     handler,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.inputSchema == nil {
		t.inputSchema = map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		}
	}

	var err error
	t.compiledInput, err = compileSchema(name+".input.json", t.inputSchema)
	if err != nil {
		return nil, core.NewInputError("tool '%s' has an invalid input schema", name).Wrap(err)
	}
	if t.outputSchema != nil {
		t.compiledOutput, err = compileSchema(name+".output.json", t.outputSchema)
		if err != nil {
			return nil, core.NewInputError("tool '%s' has an invalid output schema", name).Wrap(err)
		}
	}
	return t, nil
}

// Name returns the unique identifier the model calls this tool by.
func (t *Tool) Name() string { return t.name }

// Description returns the model-facing description.
func (t *Tool) Description() string { return t.description }

// InputSchema returns the JSON schema for the tool's arguments.
func (t *Tool) InputSchema() map[string]any { return t.inputSchema }

// OutputSchema returns the JSON schema for the tool's result, or nil.
func (t *Tool) OutputSchema() map[string]any { return t.outputSchema }

// Strict reports whether strict argument decoding was requested.
func (t *Tool) Strict() bool { return t.strict }

// Invoke validates args, runs the handler and serializes the result.
//
// Error classification drives the run loop: argument validation failures
// return tool.call.invalid and handler errors return tool.execution.failed,
// both recoverable; a panicking handler returns agent.execution.failed,
// which aborts the run.
func (t *Tool) Invoke(ctx context.Context, rt Runtime, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := t.compiledInput.Validate(normalizeForValidation(args)); err != nil {
		return "", core.NewToolCallError("invalid arguments for tool '%s'", t.name).Wrap(err)
	}

	out, err := t.run(ctx, rt, args)
	if err != nil {
		if core.CodeOf(err) == core.CodeExecution {
			return "", err
		}
		return "", core.NewToolExecutionError("tool '%s' execution failed", t.name).Wrap(err)
	}

	if t.compiledOutput != nil {
		if err := t.validateOutput(out); err != nil {
			return "", err
		}
	}
	return serializeResult(t.name, out)
}

// run executes the handler, converting panics into fatal execution errors.
func (t *Tool) run(ctx context.Context, rt Runtime, args map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.NewExecutionError("tool '%s' panicked: %v", t.name, r)
		}
	}()
	return t.handler(ctx, rt, args)
}

func (t *Tool) validateOutput(out any) error {
	data, err := json.Marshal(out)
	if err != nil {
		return core.NewToolExecutionError("tool '%s' produced an unserializable result", t.name).Wrap(err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return core.NewToolExecutionError("tool '%s' produced an undecodable result", t.name).Wrap(err)
	}
	if err := t.compiledOutput.Validate(instance); err != nil {
		return core.NewToolExecutionError("tool '%s' result failed schema validation", t.name).Wrap(err)
	}
	return nil
}

func serializeResult(name string, out any) (string, error) {
	if s, ok := out.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", core.NewToolExecutionError("tool '%s' produced an unserializable result", name).Wrap(err)
	}
	return string(data), nil
}
