package model

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/lunarhue/agentic/core"
)

// ScriptedTurn is one programmed model response.
type ScriptedTurn struct {
	Text  string
	Calls []core.ToolCall
	Usage *core.TokenUsage
	Err   error
}

// TextTurn scripts a plain text response.
func TextTurn(text string) ScriptedTurn {
	return ScriptedTurn{Text: text}
}

// ToolCallTurn scripts a response that requests tool calls, optionally with
// leading assistant text.
func ToolCallTurn(text string, calls ...core.ToolCall) ScriptedTurn {
	return ScriptedTurn{Text: text, Calls: calls}
}

// ErrorTurn scripts a failed model call.
func ErrorTurn(err error) ScriptedTurn {
	return ScriptedTurn{Err: err}
}

// WithUsage attaches token usage to the turn.
func (t ScriptedTurn) WithUsage(usage core.TokenUsage) ScriptedTurn {
	t.Usage = &usage
	return t
}

// ScriptedModel is a deterministic in-memory Model for tests and examples.
// Each Generate or GenerateStream call consumes the next scripted turn;
// received requests are recorded for assertions. The streaming path
// synthesizes a realistic chunk sequence (turn start, deltas, item
// registration, argument fragments, completion) and feeds it through the
// same Correlator a real provider drives.
type ScriptedModel struct {
	mu        sync.Mutex
	turns     []ScriptedTurn
	callCount int
	requests  []Request
	streaming bool
}

// NewScriptedModel programs a model with the given turns.
func NewScriptedModel(turns ...ScriptedTurn) *ScriptedModel {
	return &ScriptedModel{turns: turns, streaming: true}
}

// WithoutStreaming disables streaming support, for exercising the
// capability check.
func (m *ScriptedModel) WithoutStreaming() *ScriptedModel {
	m.streaming = false
	return m
}

// Requests returns the requests received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns how many model invocations have been consumed.
func (m *ScriptedModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "scripted", SupportsStreaming: m.streaming}
}

func (m *ScriptedModel) nextTurn(req Request) (ScriptedTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.callCount >= len(m.turns) {
		return ScriptedTurn{}, core.NewExecutionError("scripted model exhausted after %d turns", len(m.turns))
	}
	turn := m.turns[m.callCount]
	m.callCount++
	if turn.Err != nil {
		return ScriptedTurn{}, turn.Err
	}
	return turn, nil
}

// scriptedResponse is the raw response value the scripted adapters read.
type scriptedResponse struct {
	turn ScriptedTurn
}

// Generate implements Model.
func (m *ScriptedModel) Generate(_ context.Context, req Request) (any, error) {
	turn, err := m.nextTurn(req)
	if err != nil {
		return nil, err
	}
	return scriptedResponse{turn: turn}, nil
}

// Chunk kinds for the synthesized stream.
type scriptedChunk struct {
	kind     string // turn_start, text_delta, text_done, item_added, arg_delta, arg_done, turn_end
	itemID   string
	callID   string
	name     string
	fragment string
	text     string
	usage    *core.TokenUsage
}

// GenerateStream implements Model.
func (m *ScriptedModel) GenerateStream(_ context.Context, req Request) (ChunkStream, error) {
	turn, err := m.nextTurn(req)
	if err != nil {
		return nil, err
	}

	chunks := []scriptedChunk{{kind: "turn_start"}}
	if turn.Text != "" {
		half := len(turn.Text) / 2
		for _, frag := range []string{turn.Text[:half], turn.Text[half:]} {
			if frag != "" {
				chunks = append(chunks, scriptedChunk{kind: "text_delta", fragment: frag})
			}
		}
		chunks = append(chunks, scriptedChunk{kind: "text_done", text: turn.Text})
	}
	for _, call := range turn.Calls {
		itemID := uuid.NewString()
		chunks = append(chunks, scriptedChunk{kind: "item_added", itemID: itemID, callID: call.CallID, name: call.Name})
		payload := encodeArguments(call.Arguments)
		half := len(payload) / 2
		for _, frag := range []string{payload[:half], payload[half:]} {
			if frag != "" {
				chunks = append(chunks, scriptedChunk{kind: "arg_delta", itemID: itemID, fragment: frag})
			}
		}
		chunks = append(chunks, scriptedChunk{kind: "arg_done", itemID: itemID})
	}
	chunks = append(chunks, scriptedChunk{kind: "turn_end", usage: turn.Usage})

	return &sliceChunkStream{chunks: chunks}, nil
}

func encodeArguments(args any) string {
	switch v := args.(type) {
	case string:
		return v
	case nil:
		return "{}"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(data)
	}
}

// sliceChunkStream plays back a fixed chunk slice.
type sliceChunkStream struct {
	chunks  []scriptedChunk
	pos     int
	current any
	closed  bool
}

func (s *sliceChunkStream) Next() bool {
	if s.closed || s.pos >= len(s.chunks) {
		return false
	}
	s.current = s.chunks[s.pos]
	s.pos++
	return true
}

func (s *sliceChunkStream) Current() any { return s.current }
func (s *sliceChunkStream) Err() error   { return nil }
func (s *sliceChunkStream) Close() error { s.closed = true; return nil }

// Normalize implements Model with a neutral wire shape: role plus content,
// tool calls and outputs as plain maps.
func (m *ScriptedModel) Normalize(input Input) ([]WireMessage, error) {
	switch in := input.(type) {
	case TextInput:
		return []WireMessage{{"role": "user", "content": string(in)}}, nil
	case MessagesInput:
		out := make([]WireMessage, len(in))
		copy(out, in)
		return out, nil
	case ConversationInput:
		if in.Conversation == nil {
			return nil, core.NewInputError("conversation input is nil")
		}
		if err := in.Conversation.Err(); err != nil {
			return nil, err
		}
		var out []WireMessage
		for _, msg := range in.Conversation.Messages() {
			out = append(out, serializeScriptedMessage(msg)...)
		}
		return out, nil
	case nil:
		return nil, core.NewInputError("input must not be nil")
	default:
		return nil, core.NewInputError("unsupported input type %T", input)
	}
}

func serializeScriptedMessage(msg core.Message) []WireMessage {
	var out []WireMessage
	wire := WireMessage{"role": string(msg.Role)}
	var text string
	var calls []map[string]any
	for _, block := range msg.Blocks {
		switch b := block.(type) {
		case core.TextBlock:
			text += b.Text
		case core.ToolCallBlock:
			calls = append(calls, map[string]any{
				"call_id":   b.CallID,
				"name":      b.Name,
				"arguments": b.Arguments,
			})
		case core.ToolOutputBlock:
			out = append(out, WireMessage{
				"role":    "tool",
				"call_id": b.CallID,
				"name":    b.Name,
				"content": b.Output,
			})
		case core.ReasoningBlock:
			wire["reasoning"] = b.Summary
		}
	}
	if text != "" {
		wire["content"] = text
	}
	if len(calls) > 0 {
		wire["tool_calls"] = calls
	}
	if len(wire) > 1 {
		out = append([]WireMessage{wire}, out...)
	}
	return out
}

// ResponseAdapter implements Model.
func (m *ScriptedModel) ResponseAdapter() ResponseAdapter { return scriptedResponseAdapter{} }

// StreamAdapter implements Model.
func (m *ScriptedModel) StreamAdapter() StreamAdapter {
	return scriptedStreamAdapter{supportsStreaming: m.streaming}
}

type scriptedResponseAdapter struct{}

func (scriptedResponseAdapter) ExtractText(resp any) (string, error) {
	r, ok := resp.(scriptedResponse)
	if !ok {
		return "", core.NewParsingError("unexpected response type %T", resp)
	}
	return r.turn.Text, nil
}

func (scriptedResponseAdapter) ExtractToolCalls(resp any) ([]core.ToolCall, error) {
	r, ok := resp.(scriptedResponse)
	if !ok {
		return nil, core.NewParsingError("unexpected response type %T", resp)
	}
	calls := make([]core.ToolCall, len(r.turn.Calls))
	copy(calls, r.turn.Calls)
	return calls, nil
}

func (scriptedResponseAdapter) ExtractTokenUsage(resp any) *core.TokenUsage {
	r, ok := resp.(scriptedResponse)
	if !ok || r.turn.Usage == nil {
		return nil
	}
	clone := r.turn.Usage.Clone()
	return &clone
}

func (scriptedResponseAdapter) BuildToolCallMessage(resp any) ([]WireMessage, error) {
	r, ok := resp.(scriptedResponse)
	if !ok {
		return nil, core.NewParsingError("unexpected response type %T", resp)
	}
	return []WireMessage{scriptedToolCallMessage(r.turn.Text, r.turn.Calls)}, nil
}

func (scriptedResponseAdapter) BuildToolOutputMessage(callID, name, output string) []WireMessage {
	return []WireMessage{{
		"role":    "tool",
		"call_id": callID,
		"name":    name,
		"content": output,
	}}
}

func (scriptedResponseAdapter) ToItems(resp any) ([]core.Item, error) {
	r, ok := resp.(scriptedResponse)
	if !ok {
		return nil, core.NewParsingError("unexpected response type %T", resp)
	}
	var items []core.Item
	if r.turn.Text != "" {
		items = append(items, core.MessageItem{ID: "msg_" + uuid.NewString(), Content: r.turn.Text})
	}
	for _, call := range r.turn.Calls {
		args, _ := core.ArgumentsMap(core.NormalizeArguments(call.Arguments))
		items = append(items, core.ToolCallItem{
			ID:        "fc_" + uuid.NewString(),
			CallID:    call.CallID,
			Name:      call.Name,
			Arguments: args,
		})
	}
	return items, nil
}

type scriptedStreamAdapter struct {
	supportsStreaming bool
}

func (a scriptedStreamAdapter) SupportsStreaming() bool { return a.supportsStreaming }

func (a scriptedStreamAdapter) Process(chunks ChunkStream) *EventStream {
	correlator := NewCorrelator()
	started := false

	transform := func(raw any) []core.StreamEvent {
		chunk, ok := raw.(scriptedChunk)
		if !ok {
			return []core.StreamEvent{core.OtherEvent{Raw: raw}}
		}
		switch chunk.kind {
		case "turn_start":
			correlator.BeginTurn()
			if started {
				return nil
			}
			started = true
			return []core.StreamEvent{core.StreamStart{Raw: chunk}}
		case "text_delta":
			correlator.SawText(false)
			return []core.StreamEvent{core.MessageDelta{Delta: chunk.fragment, Raw: chunk}}
		case "text_done":
			correlator.SawText(true)
			return []core.StreamEvent{core.MessageDone{Text: chunk.text, Raw: chunk}}
		case "item_added":
			correlator.Register(chunk.itemID, chunk.callID, chunk.name)
			return []core.StreamEvent{core.OtherEvent{ID: chunk.itemID, Raw: chunk}}
		case "arg_delta":
			return []core.StreamEvent{correlator.ArgumentDelta(chunk.itemID, chunk.fragment)}
		case "arg_done":
			return []core.StreamEvent{correlator.ArgumentDone(chunk.itemID, chunk.fragment)}
		case "turn_end":
			switch correlator.FinishTurn() {
			case TurnClassText:
				return []core.StreamEvent{core.StreamEnd{Raw: chunk, Usage: chunk.usage}}
			default:
				return []core.StreamEvent{core.OtherEvent{Raw: chunk, Usage: chunk.usage}}
			}
		default:
			return []core.StreamEvent{core.OtherEvent{Raw: chunk}}
		}
	}

	return NewEventStream(chunks, transform, nil)
}

func (scriptedStreamAdapter) BuildToolCallMessage(text string, calls []core.ToolCall) []WireMessage {
	return []WireMessage{scriptedToolCallMessage(text, calls)}
}

func (scriptedStreamAdapter) BuildToolOutputMessage(callID, name, output string) []WireMessage {
	return scriptedResponseAdapter{}.BuildToolOutputMessage(callID, name, output)
}

func scriptedToolCallMessage(text string, calls []core.ToolCall) WireMessage {
	wire := WireMessage{"role": "assistant"}
	if text != "" {
		wire["content"] = text
	}
	if len(calls) > 0 {
		wireCalls := make([]map[string]any, 0, len(calls))
		for _, call := range calls {
			wireCalls = append(wireCalls, map[string]any{
				"call_id":   call.CallID,
				"name":      call.Name,
				"arguments": call.Arguments,
			})
		}
		wire["tool_calls"] = wireCalls
	}
	return wire
}
