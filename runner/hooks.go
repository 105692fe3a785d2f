package runner

import (
	"context"

	"github.com/lunarhue/agentic/core"
)

// TurnInfo describes a model turn about to start.
type TurnInfo struct {
	RunID     string
	Agent     string
	Iteration int // 1-based
}

// ToolCallInfo describes a tool call about to be dispatched.
type ToolCallInfo struct {
	RunID     string
	Agent     string
	Iteration int
	Call      core.ToolCall
}

// ToolResultInfo describes a finished tool dispatch. When the dispatch
// failed recoverably, Output holds the error text fed back to the model and
// Err the underlying error.
type ToolResultInfo struct {
	RunID     string
	Agent     string
	Iteration int
	Call      core.ToolCall
	Output    string
	Err       error
}

// RunInfo describes a finished run. Result is nil for streaming runs and
// for runs that failed.
type RunInfo struct {
	RunID  string
	Agent  string
	Turns  int
	Result *core.RunResult
	Err    error
}

// Hooks receive notifications at the run loop's decision points. Every
// field is optional; set ones are invoked synchronously on the run's
// goroutine and cannot alter the loop. Use them for tracing, auditing or
// progress reporting.
type Hooks struct {
	OnTurnStart  func(ctx context.Context, info TurnInfo)
	OnToolCall   func(ctx context.Context, info ToolCallInfo)
	OnToolResult func(ctx context.Context, info ToolResultInfo)
	OnRunEnd     func(ctx context.Context, info RunInfo)
}

func (h Hooks) turnStart(ctx context.Context, info TurnInfo) {
	if h.OnTurnStart != nil {
		h.OnTurnStart(ctx, info)
	}
}

func (h Hooks) toolCall(ctx context.Context, info ToolCallInfo) {
	if h.OnToolCall != nil {
		h.OnToolCall(ctx, info)
	}
}

func (h Hooks) toolResult(ctx context.Context, info ToolResultInfo) {
	if h.OnToolResult != nil {
		h.OnToolResult(ctx, info)
	}
}

func (h Hooks) runEnd(ctx context.Context, info RunInfo) {
	if h.OnRunEnd != nil {
		h.OnRunEnd(ctx, info)
	}
}
