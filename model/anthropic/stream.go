package anthropic

import (
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

// streamAdapter maps Messages API stream events onto canonical events.
//
// The API correlates fragments by content block index and closes every block
// explicitly, so this adapter is nearly one-to-one: block starts register
// tool calls, input_json_delta feeds the correlator, block stops finalize.
// A tool_use block that closed without emitting a single fragment finalizes
// with "{}" because the API streams no payload for empty input.
type streamAdapter struct{}

func (streamAdapter) SupportsStreaming() bool { return true }

func (streamAdapter) Process(chunks model.ChunkStream) *model.EventStream {
	st := &streamState{
		correlator: model.NewCorrelator(),
		blocks:     make(map[int64]string),
		fragments:  make(map[string]int),
		openText:   make(map[int64]*strings.Builder),
	}
	return model.NewEventStream(chunks, st.transform, st.finish)
}

func (streamAdapter) BuildToolCallMessage(text string, calls []core.ToolCall) []model.WireMessage {
	return []model.WireMessage{toolCallWire(text, calls)}
}

func (streamAdapter) BuildToolOutputMessage(callID, name, output string) []model.WireMessage {
	return []model.WireMessage{toolResultWire(callID, name, output)}
}

type streamState struct {
	correlator *model.Correlator
	blocks     map[int64]string
	fragments  map[string]int
	openText   map[int64]*strings.Builder
	textOrder  []int64
	thinking   strings.Builder
	streamID   string
	usage      *core.TokenUsage
	outputTok  int64
	stopped    bool
}

func blockKey(index int64) string { return strconv.FormatInt(index, 10) }

func (st *streamState) transform(chunk any) []core.StreamEvent {
	union, ok := chunk.(anthropic.MessageStreamEventUnion)
	if !ok {
		return []core.StreamEvent{core.OtherEvent{Raw: chunk}}
	}

	switch e := union.AsAny().(type) {
	case anthropic.MessageStartEvent:
		st.correlator.BeginTurn()
		st.streamID = e.Message.ID
		st.usage = mapUsage(e.Message.Usage)
		return []core.StreamEvent{core.StreamStart{ID: st.streamID, Raw: e}}

	case anthropic.ContentBlockStartEvent:
		cb := e.ContentBlock
		st.blocks[e.Index] = cb.Type
		switch cb.Type {
		case "tool_use":
			key := blockKey(e.Index)
			st.correlator.Register(key, cb.ID, cb.Name)
			return []core.StreamEvent{core.OtherEvent{ID: key, Raw: e}}
		case "text":
			st.openText[e.Index] = &strings.Builder{}
			st.textOrder = append(st.textOrder, e.Index)
			return nil
		case "thinking":
			return nil
		default:
			return []core.StreamEvent{core.OtherEvent{Raw: e}}
		}

	case anthropic.ContentBlockDeltaEvent:
		d := e.Delta
		switch d.Type {
		case "text_delta":
			if buf := st.openText[e.Index]; buf != nil {
				buf.WriteString(d.Text)
			}
			st.correlator.SawText(false)
			return []core.StreamEvent{core.MessageDelta{ID: st.streamID, Delta: d.Text, Raw: e}}
		case "input_json_delta":
			key := blockKey(e.Index)
			st.fragments[key]++
			return []core.StreamEvent{st.correlator.ArgumentDelta(key, d.PartialJSON)}
		case "thinking_delta":
			st.thinking.WriteString(d.Thinking)
			return []core.StreamEvent{core.ReasoningDelta{ID: st.streamID, Delta: d.Thinking, Raw: e}}
		default:
			return []core.StreamEvent{core.OtherEvent{Raw: e}}
		}

	case anthropic.ContentBlockStopEvent:
		switch st.blocks[e.Index] {
		case "text":
			text := ""
			if buf := st.openText[e.Index]; buf != nil {
				text = buf.String()
				delete(st.openText, e.Index)
			}
			st.correlator.SawText(true)
			return []core.StreamEvent{core.MessageDone{ID: st.streamID, Text: text, Raw: e}}
		case "thinking":
			text := st.thinking.String()
			st.thinking.Reset()
			return []core.StreamEvent{core.ReasoningDone{ID: st.streamID, Text: text, Raw: e}}
		case "tool_use":
			key := blockKey(e.Index)
			final := ""
			if st.fragments[key] == 0 {
				final = "{}"
			}
			return []core.StreamEvent{st.correlator.ArgumentDone(key, final)}
		default:
			return []core.StreamEvent{core.OtherEvent{Raw: e}}
		}

	case anthropic.MessageDeltaEvent:
		st.outputTok = e.Usage.OutputTokens
		return []core.StreamEvent{core.OtherEvent{ID: st.streamID, Raw: e}}

	case anthropic.MessageStopEvent:
		return []core.StreamEvent{st.terminalEvent(e)}

	default:
		return []core.StreamEvent{core.OtherEvent{Raw: chunk}}
	}
}

// finish flushes state a truncated stream left open. A healthy stream
// reaches message_stop and leaves nothing to do here.
func (st *streamState) finish() []core.StreamEvent {
	if st.stopped {
		return nil
	}
	var events []core.StreamEvent
	for _, id := range st.correlator.Pending() {
		final := ""
		if st.fragments[id] == 0 {
			final = "{}"
		}
		events = append(events, st.correlator.ArgumentDone(id, final))
	}
	var open strings.Builder
	for _, index := range st.textOrder {
		if buf := st.openText[index]; buf != nil {
			open.WriteString(buf.String())
		}
	}
	if open.Len() > 0 {
		st.correlator.SawText(true)
		events = append(events, core.MessageDone{ID: st.streamID, Text: open.String()})
	}
	return append(events, st.terminalEvent(nil))
}

func (st *streamState) terminalEvent(raw any) core.StreamEvent {
	st.stopped = true
	if st.correlator.FinishTurn() == model.TurnClassText {
		return core.StreamEnd{ID: st.streamID, Raw: raw, Usage: st.finalUsage()}
	}
	return core.OtherEvent{ID: st.streamID, Raw: raw, Usage: st.finalUsage()}
}

// finalUsage merges the input-side counts from message_start with the
// cumulative output count from the last message_delta.
func (st *streamState) finalUsage() *core.TokenUsage {
	usage := st.usage
	if st.outputTok > 0 {
		if usage == nil {
			usage = &core.TokenUsage{}
		}
		usage.OutputTokens = core.Count(st.outputTok)
	}
	return usage
}
