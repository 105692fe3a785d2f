package model

import (
	"strings"

	"github.com/lunarhue/agentic/core"
)

// TurnClass is the outcome of one streamed model turn.
type TurnClass int

const (
	// TurnClassEmpty saw neither finalized text nor tool activity.
	TurnClassEmpty TurnClass = iota

	// TurnClassText finalized assistant text and no tool calls; the run
	// is done.
	TurnClassText

	// TurnClassToolCalls announced at least one tool call; the loop
	// continues.
	TurnClassToolCalls
)

// String returns a readable name for logging.
func (t TurnClass) String() string {
	switch t {
	case TurnClassText:
		return "text"
	case TurnClassToolCalls:
		return "tool_calls"
	default:
		return "empty"
	}
}

type pendingCall struct {
	callID string
	name   string
	buf    strings.Builder
	done   bool
}

// Correlator is the per-stream registry that reassembles interleaved
// tool-call fragments and classifies turns. Providers drive it from their
// stream adapters: one instance per Process call, single goroutine, no
// locking.
//
// Degradation over failure: fragments for ids the correlator never saw
// registered produce neutral OtherEvents instead of errors, so one
// malformed chunk cannot poison the stream.
type Correlator struct {
	calls       map[string]*pendingCall
	order       []string
	sawToolCall bool
	sawTextDone bool
}

// NewCorrelator returns an empty correlator ready for a turn.
func NewCorrelator() *Correlator {
	return &Correlator{calls: make(map[string]*pendingCall)}
}

// BeginTurn clears the registry and turn flags. Providers call it on every
// turn-start signal, so stale state from a previous turn can never leak
// into correlation decisions.
func (c *Correlator) BeginTurn() {
	c.calls = make(map[string]*pendingCall)
	c.order = nil
	c.sawToolCall = false
	c.sawTextDone = false
}

// Register records a tool-call item under its stream-ephemeral id. An
// announced tool call marks the turn as a tool turn even if no fragment
// ever arrives for it.
func (c *Correlator) Register(itemID, callID, name string) {
	if _, exists := c.calls[itemID]; !exists {
		c.order = append(c.order, itemID)
	}
	c.calls[itemID] = &pendingCall{callID: callID, name: name}
	c.sawToolCall = true
}

// ArgumentDelta appends an argument fragment to the identified call and
// returns the typed delta event. Unregistered or incomplete registrations
// degrade to a neutral event.
func (c *Correlator) ArgumentDelta(itemID, fragment string) core.StreamEvent {
	entry, ok := c.calls[itemID]
	if !ok || entry.done || entry.callID == "" || entry.name == "" {
		return core.OtherEvent{ID: itemID}
	}
	entry.buf.WriteString(fragment)
	c.sawToolCall = true
	return core.ToolCallDelta{
		ID:     itemID,
		CallID: entry.callID,
		Name:   entry.name,
		Delta:  fragment,
	}
}

// ArgumentDone finalizes the identified call. The provider-supplied final
// payload wins when non-empty, otherwise the accumulated buffer is used; a
// call that streamed no fragments at all resolves to an empty object, since
// zero-parameter tools announce a call without sending any payload.
// Finalization consumes the item: a second Done for the same id is neutral.
func (c *Correlator) ArgumentDone(itemID, final string) core.StreamEvent {
	entry, ok := c.calls[itemID]
	if !ok || entry.done || entry.callID == "" || entry.name == "" {
		return core.OtherEvent{ID: itemID}
	}
	payload := final
	if payload == "" {
		payload = entry.buf.String()
	}
	if payload == "" {
		payload = "{}"
	}
	entry.done = true
	return core.ToolCallDone{
		ID:        itemID,
		CallID:    entry.callID,
		Name:      entry.name,
		Arguments: core.NormalizeArguments(payload),
	}
}

// SawText records streamed text. Only finalized text (done=true) counts
// toward classifying the turn as a text turn.
func (c *Correlator) SawText(done bool) {
	if done {
		c.sawTextDone = true
	}
}

// Pending returns the ids registered this turn that have not been
// finalized, in registration order. Chat-style backends without per-item
// done signals flush these when the turn finishes.
func (c *Correlator) Pending() []string {
	var ids []string
	for _, id := range c.order {
		if entry, ok := c.calls[id]; ok && !entry.done {
			ids = append(ids, id)
		}
	}
	return ids
}

// FinishTurn classifies the completed turn. Tool activity dominates: a
// turn with both text and tool calls is a tool turn.
func (c *Correlator) FinishTurn() TurnClass {
	switch {
	case c.sawToolCall:
		return TurnClassToolCalls
	case c.sawTextDone:
		return TurnClassText
	default:
		return TurnClassEmpty
	}
}
