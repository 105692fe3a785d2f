package openai

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

// streamAdapter maps chat completion chunks onto canonical stream events.
//
// Chat streaming correlates tool-call fragments by choice index, not by item
// id, and has no per-item done signal. The adapter registers each index with
// the correlator when it first appears and flushes every pending call when
// the finish reason arrives. The terminal event is deferred past the finish
// reason because the usage chunk trails it when include_usage is set.
type streamAdapter struct{}

func (streamAdapter) SupportsStreaming() bool { return true }

func (streamAdapter) Process(chunks model.ChunkStream) *model.EventStream {
	st := &streamState{
		correlator: model.NewCorrelator(),
		seen:       make(map[string]bool),
	}
	return model.NewEventStream(chunks, st.transform, st.finish)
}

func (streamAdapter) BuildToolCallMessage(text string, calls []core.ToolCall) []model.WireMessage {
	return []model.WireMessage{toolCallWire(text, calls)}
}

func (streamAdapter) BuildToolOutputMessage(callID, name, output string) []model.WireMessage {
	return []model.WireMessage{toolOutputWire(callID, name, output)}
}

type streamState struct {
	correlator *model.Correlator
	seen       map[string]bool
	text       strings.Builder
	textSeen   bool
	streamID   string
	usage      *core.TokenUsage
	started    bool
	finished   bool
	flushed    bool
	terminal   bool
}

func (st *streamState) transform(chunk any) []core.StreamEvent {
	c, ok := chunk.(openai.ChatCompletionChunk)
	if !ok {
		return []core.StreamEvent{core.OtherEvent{Raw: chunk}}
	}

	var events []core.StreamEvent
	if !st.started {
		st.started = true
		st.streamID = c.ID
		st.correlator.BeginTurn()
		events = append(events, core.StreamStart{ID: c.ID, Raw: c})
	}

	if len(c.Choices) == 0 {
		// Trailing usage-only chunk.
		if u := mapUsage(c.Usage); u != nil {
			st.usage = u
			if st.finished {
				events = append(events, st.terminalEvent(c))
			}
		}
		return events
	}

	choice := c.Choices[0]
	if choice.Delta.Content != "" {
		st.textSeen = true
		st.text.WriteString(choice.Delta.Content)
		st.correlator.SawText(false)
		events = append(events, core.MessageDelta{ID: c.ID, Delta: choice.Delta.Content, Raw: c})
	}

	for _, tc := range choice.Delta.ToolCalls {
		key := strconv.FormatInt(tc.Index, 10)
		if !st.seen[key] && (tc.ID != "" || tc.Function.Name != "") {
			st.seen[key] = true
			callID := tc.ID
			if callID == "" {
				callID = uuid.NewString()
			}
			st.correlator.Register(key, callID, tc.Function.Name)
			events = append(events, core.OtherEvent{ID: key, Raw: c})
		}
		if tc.Function.Arguments != "" {
			events = append(events, st.correlator.ArgumentDelta(key, tc.Function.Arguments))
		}
	}

	if choice.FinishReason != "" {
		st.finished = true
		events = append(events, st.flushTurn(c)...)
	}
	return events
}

// flushTurn finalizes pending tool calls and buffered text. Chat streams
// signal neither per item, so the finish reason (or stream end) stands in
// for both.
func (st *streamState) flushTurn(raw any) []core.StreamEvent {
	if st.flushed {
		return nil
	}
	st.flushed = true
	var events []core.StreamEvent
	for _, id := range st.correlator.Pending() {
		events = append(events, st.correlator.ArgumentDone(id, ""))
	}
	if st.textSeen {
		st.correlator.SawText(true)
		events = append(events, core.MessageDone{ID: st.streamID, Text: st.text.String(), Raw: raw})
	}
	return events
}

func (st *streamState) finish() []core.StreamEvent {
	events := st.flushTurn(nil)
	if !st.terminal {
		events = append(events, st.terminalEvent(nil))
	}
	return events
}

// terminalEvent closes the turn. Text turns end the run, so they surface as
// StreamEnd; tool-call turns keep the loop going and end neutrally. Usage,
// when the trailing chunk delivered any, rides on the terminal event.
func (st *streamState) terminalEvent(raw any) core.StreamEvent {
	st.terminal = true
	if st.correlator.FinishTurn() == model.TurnClassText {
		return core.StreamEnd{ID: st.streamID, Raw: raw, Usage: st.usage}
	}
	return core.OtherEvent{ID: st.streamID, Raw: raw, Usage: st.usage}
}
