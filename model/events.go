package model

import "github.com/lunarhue/agentic/core"

// EventStream is a lazy, one-pass sequence of canonical stream events
// produced from a ChunkStream. Events for one chunk are drained before the
// next chunk is pulled, so consumption order matches arrival order.
type EventStream struct {
	chunks    ChunkStream
	transform func(chunk any) []core.StreamEvent
	finish    func() []core.StreamEvent

	pending  []core.StreamEvent
	current  core.StreamEvent
	err      error
	finished bool
	done     bool
}

// NewEventStream wraps a chunk stream with a per-chunk transform. finish, if
// non-nil, runs once after the last chunk to flush buffered state; it is
// skipped when the stream fails.
func NewEventStream(chunks ChunkStream, transform func(chunk any) []core.StreamEvent, finish func() []core.StreamEvent) *EventStream {
	return &EventStream{chunks: chunks, transform: transform, finish: finish}
}

// Next advances to the next event, returning false at the end of the
// stream or on error.
func (s *EventStream) Next() bool {
	if s.err != nil || s.done {
		return false
	}
	for len(s.pending) == 0 {
		if !s.chunks.Next() {
			if err := s.chunks.Err(); err != nil {
				s.err = err
				s.done = true
				return false
			}
			if s.finish != nil && !s.finished {
				s.finished = true
				s.pending = s.finish()
				continue
			}
			s.done = true
			return false
		}
		s.pending = s.transform(s.chunks.Current())
	}
	s.current = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

// Current returns the event Next advanced to.
func (s *EventStream) Current() core.StreamEvent { return s.current }

// Err returns the terminal stream error, if any.
func (s *EventStream) Err() error { return s.err }

// Close releases the underlying chunk stream.
func (s *EventStream) Close() error { return s.chunks.Close() }
