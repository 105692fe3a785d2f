package core

// StreamEvent is one canonical event produced while consuming a provider
// stream. Concrete event types implement the unexported isStreamEvent marker
// enabling a closed set; consumers switch exhaustively.
//
// ID carries the ephemeral provider identifier the event was correlated
// under, when one exists. Raw carries the provider chunk that produced the
// event for callers that need vendor detail.
type StreamEvent interface{ isStreamEvent() }

// MessageDelta is a fragment of streamed assistant text.
type MessageDelta struct {
	ID    string
	Delta string
	Raw   any
}

func (MessageDelta) isStreamEvent() {}

// MessageDone carries the final text of a streamed assistant message. Used
// by the runner only as a fallback when no delta text arrived for the turn.
type MessageDone struct {
	ID   string
	Text string
	Raw  any
}

func (MessageDone) isStreamEvent() {}

// ToolCallDelta is a correlated fragment of tool-call arguments.
type ToolCallDelta struct {
	ID     string
	CallID string
	Name   string
	Delta  string
	Raw    any
}

func (ToolCallDelta) isStreamEvent() {}

// ToolCallDone is the terminal, caller-visible unit of one streamed tool
// call: exactly one per correlated item per turn. Arguments is a
// map[string]any when the accumulated payload parsed as a JSON object,
// otherwise the raw string.
type ToolCallDone struct {
	ID        string
	CallID    string
	Name      string
	Arguments any
	Raw       any
}

func (ToolCallDone) isStreamEvent() {}

// ToolOutputDone is the synthetic event the runner emits after executing a
// tool call during a streaming run.
type ToolOutputDone struct {
	CallID string
	Name   string
	Output string
}

func (ToolOutputDone) isStreamEvent() {}

// ReasoningDelta is a fragment of streamed reasoning content.
type ReasoningDelta struct {
	ID    string
	Delta string
	Raw   any
}

func (ReasoningDelta) isStreamEvent() {}

// ReasoningDone carries finalized reasoning content.
type ReasoningDone struct {
	ID   string
	Text string
	Raw  any
}

func (ReasoningDone) isStreamEvent() {}

// StreamStart opens a run's event stream, once per stream.
type StreamStart struct {
	ID    string
	Raw   any
	Usage *TokenUsage
}

func (StreamStart) isStreamEvent() {}

// StreamEnd terminates the stream after a text-final turn.
type StreamEnd struct {
	ID    string
	Raw   any
	Usage *TokenUsage
}

func (StreamEnd) isStreamEvent() {}

// OtherEvent is the neutral event: unregistered correlation ids, tool-turn
// completions and unclassified provider chunks degrade to it instead of
// failing the stream.
type OtherEvent struct {
	ID    string
	Raw   any
	Usage *TokenUsage
}

func (OtherEvent) isStreamEvent() {}

// ErrorEvent surfaces a recoverable per-chunk anomaly to stream consumers.
type ErrorEvent struct {
	Err error
	Raw any
}

func (ErrorEvent) isStreamEvent() {}

// EventUsage returns the token usage snapshot attached to an event, or nil.
func EventUsage(ev StreamEvent) *TokenUsage {
	switch e := ev.(type) {
	case StreamStart:
		return e.Usage
	case StreamEnd:
		return e.Usage
	case OtherEvent:
		return e.Usage
	default:
		return nil
	}
}
