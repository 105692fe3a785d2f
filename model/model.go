package model

import (
	"context"
	"time"

	"github.com/lunarhue/agentic/tool"
)

// Client defaults shared by the provider implementations.
const (
	// DefaultTimeout bounds a single provider API call.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the retry budget handed to provider SDK clients.
	DefaultMaxRetries = 3
)

// WireMessage is one provider-shaped chat message. The runner treats wire
// messages as opaque; only the owning provider reads them back.
type WireMessage = map[string]any

// Request captures one normalized model invocation.
type Request struct {
	// Messages is the provider-shaped transcript, oldest first.
	Messages []WireMessage

	// System is the system instruction, when the agent has one. Providers
	// that model it as a message prepend it; others pass it out of band.
	System string

	// Tools the model may call this turn.
	Tools []*tool.Tool

	// ToolChoice is "", "auto", "none" or "required".
	ToolChoice string

	// ParallelToolCalls toggles parallel tool use on providers that
	// support the switch. Nil leaves the provider default.
	ParallelToolCalls *bool
}

// Info contains metadata about a model implementation.
type Info struct {
	Name              string `json:"name"`
	Provider          string `json:"provider"` // "openai", "anthropic", "scripted", etc.
	SupportsStreaming bool   `json:"supports_streaming"`
}

// ChunkStream is a one-pass iterator over raw provider stream chunks.
// After Next returns false, Err reports the terminal error, if any. Close
// releases the underlying connection and is safe to call more than once.
type ChunkStream interface {
	Next() bool
	Current() any
	Err() error
	Close() error
}

// Model is the provider contract the runner drives. Generate returns the
// provider's raw response value; the paired ResponseAdapter knows how to
// read it. GenerateStream returns the raw chunk sequence the paired
// StreamAdapter turns into canonical events.
type Model interface {
	Info() Info

	Generate(ctx context.Context, req Request) (any, error)
	GenerateStream(ctx context.Context, req Request) (ChunkStream, error)

	// Normalize converts caller input into this provider's wire messages.
	Normalize(input Input) ([]WireMessage, error)

	ResponseAdapter() ResponseAdapter
	StreamAdapter() StreamAdapter
}
