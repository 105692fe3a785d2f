package core

// RunResult is the outcome of a completed blocking run.
type RunResult struct {
	// Output is the text of the final, tool-free assistant turn.
	Output string

	// Items are the response items accumulated across all turns of the
	// run, in arrival order.
	Items []Item

	// Usage is the token usage aggregated across every model call of the
	// run. Nil when no call reported usage.
	Usage *TokenUsage

	// Timing spans the whole run.
	Timing Timing
}

// RunEvent wraps a single stream event with run-level progress. A streaming
// run emits one RunEvent per underlying stream event, plus synthetic events
// for locally executed tool outputs.
type RunEvent struct {
	// Output is the assistant text accumulated so far across all turns.
	Output string

	// Event is the stream event this RunEvent wraps.
	Event StreamEvent

	// Usage is a copy of the token usage aggregated so far. Nil until the
	// first chunk that reports usage.
	Usage *TokenUsage

	// Timing is a snapshot of the run timing at emission. End is zero
	// until the run finishes.
	Timing Timing
}
