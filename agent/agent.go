package agent

import (
	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/internal/util"
	"github.com/lunarhue/agentic/model"
	"github.com/lunarhue/agentic/tool"
)

// DefaultMaxIterations bounds the model/tool loop when no override is given.
const DefaultMaxIterations = 20

// Options configures an Agent under construction.
//
// Use functional options with New to override defaults.
type Options struct {
	Description       string
	Instructions      string
	InstructionVars   map[string]any
	Tools             []*tool.Tool
	ToolChoice        string
	ParallelToolCalls *bool
	MaxIterations     int
}

// WithDescription sets a human-readable description of the agent's purpose.
func WithDescription(description string) func(o *Options) {
	return func(o *Options) { o.Description = description }
}

// WithInstructions sets the system instructions. The text may contain Go
// template placeholders resolved against WithInstructionVars at run start.
func WithInstructions(text string) func(o *Options) {
	return func(o *Options) { o.Instructions = text }
}

// WithInstructionVars supplies the data the instruction template is rendered
// with.
func WithInstructionVars(vars map[string]any) func(o *Options) {
	return func(o *Options) { o.InstructionVars = vars }
}

// WithTools adds tools the model may call. Tool names must be unique across
// the agent.
func WithTools(tools ...*tool.Tool) func(o *Options) {
	return func(o *Options) { o.Tools = append(o.Tools, tools...) }
}

// WithToolChoice constrains tool use: "auto" (default), "none" or
// "required".
func WithToolChoice(choice string) func(o *Options) {
	return func(o *Options) { o.ToolChoice = choice }
}

// WithParallelToolCalls toggles parallel tool use on providers that support
// the switch. Unset leaves the provider default.
func WithParallelToolCalls(enabled bool) func(o *Options) {
	return func(o *Options) { o.ParallelToolCalls = &enabled }
}

// WithMaxIterations overrides the model/tool loop bound.
func WithMaxIterations(n int) func(o *Options) {
	return func(o *Options) { o.MaxIterations = n }
}

// Agent is an immutable definition of a model, its instructions and the
// tools it may call. Agents hold no run state; hand one to a runner to
// execute it.
type Agent struct {
	name              string
	description       string
	instructions      string
	instructionVars   map[string]any
	model             model.Model
	tools             []*tool.Tool
	toolIndex         map[string]*tool.Tool
	toolChoice        string
	parallelToolCalls *bool
	maxIterations     int
}

// New builds an Agent from a name and a model. Configuration errors (empty
// name, missing model, duplicate tool names, an unknown tool choice or a
// non-positive iteration bound) are rejected with input errors.
func New(name string, m model.Model, optFns ...func(o *Options)) (*Agent, error) {
	if name == "" {
		return nil, core.NewInputError("agent name must not be empty")
	}
	if m == nil {
		return nil, core.NewInputError("agent '%s' requires a model", name)
	}

	opts := Options{MaxIterations: DefaultMaxIterations}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxIterations < 1 {
		return nil, core.NewInputError("agent '%s' max iterations must be at least 1, got %d", name, opts.MaxIterations)
	}
	switch opts.ToolChoice {
	case "", "auto", "none", "required":
	default:
		return nil, core.NewInputError("agent '%s' has unsupported tool choice %q", name, opts.ToolChoice)
	}

	index := make(map[string]*tool.Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		if t == nil {
			return nil, core.NewInputError("agent '%s' was given a nil tool", name)
		}
		if _, exists := index[t.Name()]; exists {
			return nil, core.NewInputError("agent '%s' has duplicate tool '%s'", name, t.Name())
		}
		index[t.Name()] = t
	}

	return &Agent{
		name:              name,
		description:       opts.Description,
		instructions:      opts.Instructions,
		instructionVars:   opts.InstructionVars,
		model:             m,
		tools:             opts.Tools,
		toolIndex:         index,
		toolChoice:        opts.ToolChoice,
		parallelToolCalls: opts.ParallelToolCalls,
		maxIterations:     opts.MaxIterations,
	}, nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Description returns the human-readable description, if any.
func (a *Agent) Description() string { return a.description }

// Model returns the model the agent runs against.
func (a *Agent) Model() model.Model { return a.model }

// Instructions renders the system instructions against the instruction
// vars. Template errors come back as input errors.
func (a *Agent) Instructions() (string, error) {
	rendered, err := util.RenderTemplate(a.instructions, a.instructionVars)
	if err != nil {
		return "", core.NewInputError("agent '%s' instructions failed to render", a.name).Wrap(err)
	}
	return rendered, nil
}

// Tools returns the agent's tools in registration order.
func (a *Agent) Tools() []*tool.Tool {
	out := make([]*tool.Tool, len(a.tools))
	copy(out, a.tools)
	return out
}

// FindTool looks a tool up by name.
func (a *Agent) FindTool(name string) (*tool.Tool, bool) {
	t, ok := a.toolIndex[name]
	return t, ok
}

// ToolChoice returns the configured tool choice, or "" for the provider
// default.
func (a *Agent) ToolChoice() string { return a.toolChoice }

// ParallelToolCalls returns the parallel tool use setting, or nil when
// unset.
func (a *Agent) ParallelToolCalls() *bool {
	if a.parallelToolCalls == nil {
		return nil
	}
	v := *a.parallelToolCalls
	return &v
}

// MaxIterations returns the model/tool loop bound.
func (a *Agent) MaxIterations() int { return a.maxIterations }
