package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lunarhue/agentic/agent"
	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/logging"
	"github.com/lunarhue/agentic/model"
	"github.com/lunarhue/agentic/session"
	"github.com/lunarhue/agentic/tool"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logger receives structured loop diagnostics.
	Logger logging.Logger
	// Hooks observe the loop's decision points.
	Hooks Hooks
}

// WithLogger overrides the default no-op logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// WithHooks installs run hooks.
func WithHooks(hooks Hooks) func(o *Options) {
	return func(o *Options) { o.Hooks = hooks }
}

// Runner drives the model/tool loop for agents. It holds no per-run state;
// public methods are safe for concurrent use.
type Runner struct {
	logger logging.Logger
	hooks  Hooks
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{logger: opts.Logger, hooks: opts.Hooks}
}

// RunOptions holds per-run overrides passed to Run and RunStream.
type RunOptions struct {
	Runtime       tool.Runtime
	RuntimeValues map[string]any
	SessionStore  session.Store
	SessionID     string
}

// RunOption customizes a single run.
type RunOption func(o *RunOptions)

// WithRuntime supplies the runtime handed to tool handlers. The runner's
// logger is injected when the runtime carries none.
func WithRuntime(rt tool.Runtime) RunOption {
	return func(o *RunOptions) { o.Runtime = rt }
}

// WithRuntimeValues merges request-scoped values into the tool runtime.
func WithRuntimeValues(values map[string]any) RunOption {
	return func(o *RunOptions) { o.RuntimeValues = values }
}

// WithSession continues the conversation stored under id: the stored wire
// history is prepended before the new input and the grown transcript is
// saved after a successful run.
func WithSession(store session.Store, id string) RunOption {
	return func(o *RunOptions) {
		o.SessionStore = store
		o.SessionID = id
	}
}

// runState is the mutable state of one run.
type runState struct {
	id      string
	agent   *agent.Agent
	model   model.Model
	req     model.Request
	runtime tool.Runtime
	opts    RunOptions
	record  *session.Record // loaded session, nil without one
	usage   *core.TokenUsage
	items   []core.Item
	timing  core.Timing
	turns   int
}

func (st *runState) addUsage(u *core.TokenUsage) {
	if u == nil {
		return
	}
	if st.usage == nil {
		clone := u.Clone()
		st.usage = &clone
		return
	}
	sum := st.usage.Add(*u)
	st.usage = &sum
}

func (st *runState) usageSnapshot() *core.TokenUsage {
	if st.usage == nil {
		return nil
	}
	clone := st.usage.Clone()
	return &clone
}

// prepare validates the run inputs and assembles the initial request,
// including any stored session history. Errors here surface before the
// first model call.
func (r *Runner) prepare(ctx context.Context, ag *agent.Agent, input model.Input, optFns []RunOption) (*runState, error) {
	if ag == nil {
		return nil, core.NewInputError("agent must not be nil")
	}

	var opts RunOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	m := ag.Model()
	instructions, err := ag.Instructions()
	if err != nil {
		return nil, err
	}
	messages, err := m.Normalize(input)
	if err != nil {
		return nil, err
	}

	st := &runState{
		id:      uuid.NewString(),
		agent:   ag,
		model:   m,
		opts:    opts,
		runtime: opts.Runtime,
		timing:  core.Timing{Start: time.Now()},
	}

	if st.runtime.Logger == nil {
		st.runtime.Logger = r.logger
	}
	if len(opts.RuntimeValues) > 0 {
		merged := make(map[string]any, len(st.runtime.Values)+len(opts.RuntimeValues))
		for k, v := range st.runtime.Values {
			merged[k] = v
		}
		for k, v := range opts.RuntimeValues {
			merged[k] = v
		}
		st.runtime.Values = merged
	}

	if opts.SessionStore != nil {
		if opts.SessionID == "" {
			return nil, core.NewInputError("session id must not be empty")
		}
		record, err := opts.SessionStore.Load(ctx, opts.SessionID)
		if err != nil {
			return nil, core.NewExecutionError("failed to load session '%s'", opts.SessionID).Wrap(err)
		}
		if record != nil {
			st.record = record
			messages = append(session.CloneMessages(record.Messages), messages...)
		}
	}

	st.req = model.Request{
		Messages:          messages,
		System:            instructions,
		Tools:             ag.Tools(),
		ToolChoice:        ag.ToolChoice(),
		ParallelToolCalls: ag.ParallelToolCalls(),
	}
	return st, nil
}

// Run executes the agent until a turn without tool calls and returns the
// final result. The loop is bounded by the agent's max iterations.
func (r *Runner) Run(ctx context.Context, ag *agent.Agent, input model.Input, opts ...RunOption) (*core.RunResult, error) {
	st, err := r.prepare(ctx, ag, input, opts)
	if err != nil {
		return nil, err
	}

	r.logger.Debug(
		"run.start",
		"run_id", st.id,
		"agent", ag.Name(),
		"provider", st.model.Info().Provider,
		"max_iterations", ag.MaxIterations(),
	)

	result, err := r.runBlocking(ctx, st)
	r.hooks.runEnd(ctx, RunInfo{RunID: st.id, Agent: ag.Name(), Turns: st.turns, Result: result, Err: err})
	if err != nil {
		r.logger.Error("run.failed", append([]any{"run_id", st.id}, logging.ErrorAttrs(err)...)...)
		return nil, err
	}

	r.logger.Debug("run.complete", "run_id", st.id, "turns", st.turns, "duration", st.timing.Duration())
	return result, nil
}

// turnOutcome is the closed classification of one model turn. The loop
// switches over it exhaustively; an unknown variant aborts the run.
type turnOutcome interface{ isTurnOutcome() }

// terminalTurn ends the run with final assistant text.
type terminalTurn struct{ text string }

// toolCallTurn continues the run after dispatching the requested calls.
type toolCallTurn struct {
	text  string
	calls []core.ToolCall
}

func (terminalTurn) isTurnOutcome() {}
func (toolCallTurn) isTurnOutcome() {}

func classifyTurn(adapter model.ResponseAdapter, resp any) (turnOutcome, error) {
	text, err := adapter.ExtractText(resp)
	if err != nil {
		return nil, err
	}
	calls, err := adapter.ExtractToolCalls(resp)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return terminalTurn{text: text}, nil
	}
	return toolCallTurn{text: text, calls: calls}, nil
}

func (r *Runner) runBlocking(ctx context.Context, st *runState) (*core.RunResult, error) {
	adapter := st.model.ResponseAdapter()

	for iteration := 1; iteration <= st.agent.MaxIterations(); iteration++ {
		st.turns = iteration
		r.hooks.turnStart(ctx, TurnInfo{RunID: st.id, Agent: st.agent.Name(), Iteration: iteration})
		r.logger.Debug("run.turn", "run_id", st.id, "iteration", iteration)

		resp, err := st.model.Generate(ctx, st.req)
		if err != nil {
			return nil, err
		}

		outcome, err := classifyTurn(adapter, resp)
		if err != nil {
			return nil, err
		}
		st.addUsage(adapter.ExtractTokenUsage(resp))
		items, err := adapter.ToItems(resp)
		if err != nil {
			return nil, err
		}
		st.items = append(st.items, items...)

		switch turn := outcome.(type) {
		case terminalTurn:
			if st.opts.SessionStore != nil {
				wire, err := adapter.BuildToolCallMessage(resp)
				if err != nil {
					return nil, err
				}
				if err := r.saveSession(ctx, st, wire); err != nil {
					return nil, err
				}
			}
			st.timing.End = time.Now()
			return &core.RunResult{
				Output: turn.text,
				Items:  st.items,
				Usage:  st.usage,
				Timing: st.timing,
			}, nil

		case toolCallTurn:
			wire, err := adapter.BuildToolCallMessage(resp)
			if err != nil {
				return nil, err
			}
			st.req.Messages = append(st.req.Messages, wire...)

			for _, call := range turn.calls {
				output, err := r.dispatch(ctx, st, iteration, call)
				if err != nil {
					return nil, err
				}
				st.items = append(st.items, core.ToolOutputItem{
					ID:     uuid.NewString(),
					CallID: call.CallID,
					Name:   call.Name,
					Result: output,
				})
				st.req.Messages = append(st.req.Messages, adapter.BuildToolOutputMessage(call.CallID, call.Name, output)...)
			}

		default:
			return nil, core.NewExecutionError("unhandled turn outcome %T", outcome)
		}
	}

	return nil, r.maxIterationsError(st)
}

func (r *Runner) maxIterationsError(st *runState) error {
	return core.NewMaxIterationsError("run did not terminate within %d iterations", st.agent.MaxIterations()).
		With("max_iterations", st.agent.MaxIterations()).
		With("provider", st.model.Info().Provider)
}

// dispatch executes one tool call under the loop's error policy: unknown
// tools, malformed arguments and failures raised by tool logic come back as
// error text the model can react to; anything else aborts the run.
func (r *Runner) dispatch(ctx context.Context, st *runState, iteration int, call core.ToolCall) (string, error) {
	r.hooks.toolCall(ctx, ToolCallInfo{RunID: st.id, Agent: st.agent.Name(), Iteration: iteration, Call: call})
	r.logger.Debug("run.tool.dispatch", "run_id", st.id, "tool", call.Name, "call_id", call.CallID)

	output, err := r.invokeTool(ctx, st, call)
	if err != nil {
		if !core.IsRecoverableToolError(err) {
			if core.CodeOf(err) != core.CodeExecution {
				err = core.NewExecutionError("tool '%s' failed", call.Name).Wrap(err)
			}
			r.logger.Error("run.tool.failed", append([]any{"run_id", st.id, "tool", call.Name}, logging.ErrorAttrs(err)...)...)
			r.hooks.toolResult(ctx, ToolResultInfo{RunID: st.id, Agent: st.agent.Name(), Iteration: iteration, Call: call, Err: err})
			return "", err
		}
		output = fmt.Sprintf("Error executing tool '%s': %s", call.Name, err.Error())
		r.logger.Warn("run.tool.recovered", "run_id", st.id, "tool", call.Name, "error", err.Error())
		r.hooks.toolResult(ctx, ToolResultInfo{RunID: st.id, Agent: st.agent.Name(), Iteration: iteration, Call: call, Output: output, Err: err})
		return output, nil
	}

	r.hooks.toolResult(ctx, ToolResultInfo{RunID: st.id, Agent: st.agent.Name(), Iteration: iteration, Call: call, Output: output})
	return output, nil
}

func (r *Runner) invokeTool(ctx context.Context, st *runState, call core.ToolCall) (string, error) {
	t, ok := st.agent.FindTool(call.Name)
	if !ok {
		return "", core.NewToolCallError("tool '%s' not found", call.Name)
	}
	args, ok := core.ArgumentsMap(core.NormalizeArguments(call.Arguments))
	if !ok {
		return "", core.NewToolCallError("arguments for tool '%s' are not a JSON object", call.Name)
	}
	return t.Invoke(ctx, st.runtime, args)
}

// saveSession persists the grown transcript after a successful run. The
// final assistant wire messages are appended so the next run continues from
// a complete conversation.
func (r *Runner) saveSession(ctx context.Context, st *runState, finalWire []model.WireMessage) error {
	if st.opts.SessionStore == nil {
		return nil
	}

	history := make([]model.WireMessage, 0, len(st.req.Messages)+len(finalWire))
	history = append(history, st.req.Messages...)
	history = append(history, finalWire...)

	record := &session.Record{ID: st.opts.SessionID, Messages: history}
	if st.record != nil {
		record.Usage = st.record.Usage
	}
	if st.usage != nil {
		record.Usage = record.Usage.Add(*st.usage)
	}

	if err := st.opts.SessionStore.Save(ctx, record); err != nil {
		return core.NewExecutionError("failed to save session '%s'", st.opts.SessionID).Wrap(err)
	}
	r.logger.Debug("run.session.saved", "run_id", st.id, "session_id", st.opts.SessionID, "messages", len(history))
	return nil
}
