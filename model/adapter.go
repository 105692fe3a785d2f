package model

import "github.com/lunarhue/agentic/core"

// ResponseAdapter reads a provider's raw blocking response. Implementations
// are pure: they compute values and never touch runner state. The resp
// argument is always the value the paired Model's Generate returned.
type ResponseAdapter interface {
	// ExtractText returns the assistant text of the response.
	ExtractText(resp any) (string, error)

	// ExtractToolCalls returns the response's tool calls in backend
	// emission order. No tool calls is a normal outcome, not an error.
	ExtractToolCalls(resp any) ([]core.ToolCall, error)

	// ExtractTokenUsage returns the usage reported on the response, or nil.
	ExtractTokenUsage(resp any) *core.TokenUsage

	// BuildToolCallMessage re-serializes the assistant turn (text and tool
	// calls) as wire messages to append to the transcript.
	BuildToolCallMessage(resp any) ([]WireMessage, error)

	// BuildToolOutputMessage shapes one executed tool result as wire
	// messages.
	BuildToolOutputMessage(callID, name, output string) []WireMessage

	// ToItems converts the response into canonical run items.
	ToItems(resp any) ([]core.Item, error)
}

// StreamAdapter turns a provider's raw chunk sequence into canonical stream
// events.
type StreamAdapter interface {
	// SupportsStreaming reports whether the provider implements streaming
	// at all.
	SupportsStreaming() bool

	// Process consumes the chunk stream lazily, yielding canonical events
	// in order. The returned EventStream owns chunks and closes it.
	Process(chunks ChunkStream) *EventStream

	// BuildToolCallMessage shapes the assistant turn reconstructed from
	// streamed text and tool calls.
	BuildToolCallMessage(text string, calls []core.ToolCall) []WireMessage

	// BuildToolOutputMessage shapes one executed tool result as wire
	// messages.
	BuildToolOutputMessage(callID, name, output string) []WireMessage
}
