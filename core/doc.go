// Package core provides the foundational domain types shared across the
// agentic module. It defines the canonical abstractions for:
//
//   - Messages and content blocks (text, tool calls, tool outputs, reasoning)
//   - Conversations (validated, append-only message sequences)
//   - Response items and stream events (provider-neutral model output)
//   - Token usage accounting and run timing
//   - The structured error taxonomy used by every layer above
//
// The package intentionally keeps provider concerns (wire formats, SDK
// clients, request shaping) out of scope; those live in the model packages.
// Content blocks, response items and stream events are closed unions:
// concrete variants implement an unexported marker method so consumers can
// switch over them exhaustively.
package core
