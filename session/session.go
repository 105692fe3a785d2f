package session

import (
	"context"
	"time"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

// Record is the persisted state of one conversation. Messages hold the full
// wire-level transcript, so a record written by one provider's runs must be
// replayed against the same provider.
type Record struct {
	// ID identifies the conversation.
	ID string

	// Messages is the wire transcript accumulated across runs, oldest
	// first.
	Messages []model.WireMessage

	// Usage is the token usage accumulated across runs.
	Usage core.TokenUsage

	// Updated is the time of the last save.
	Updated time.Time
}

// Clone returns a deep copy of the record. Wire messages are JSON-shaped
// maps, so the copy recurses through nested maps and slices.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		ID:       r.ID,
		Messages: CloneMessages(r.Messages),
		Usage:    r.Usage.Clone(),
		Updated:  r.Updated,
	}
}

// CloneMessages deep-copies a wire transcript.
func CloneMessages(messages []model.WireMessage) []model.WireMessage {
	if messages == nil {
		return nil
	}
	out := make([]model.WireMessage, len(messages))
	for i, m := range messages {
		out[i] = cloneValue(m).(model.WireMessage)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Store persists conversation records between runs.
type Store interface {
	// Load returns the record for id, or (nil, nil) when none exists.
	Load(ctx context.Context, id string) (*Record, error)

	// Save stores the record, replacing any previous state for its ID.
	Save(ctx context.Context, record *Record) error
}
