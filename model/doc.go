// Package model defines the provider-agnostic contract for driving language
// models inside the agentic run loop.
//
// Core pieces:
//   - The Model interface: blocking and streaming generation plus input
//     normalization behind one surface
//   - ResponseAdapter / StreamAdapter: pure readers that translate raw
//     provider payloads into canonical values and events
//   - Correlator: the per-stream registry that reassembles interleaved
//     tool-call fragments and classifies turns
//   - ScriptedModel: a deterministic in-memory model for tests and examples
//
// Providers (openai, anthropic) implement Model so the runner and agents
// stay decoupled from vendor SDKs. Raw responses and chunks flow through
// the runner as opaque values; only the provider's own adapters read them.
package model
