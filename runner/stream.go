package runner

import (
	"context"
	"strings"
	"time"

	"github.com/lunarhue/agentic/agent"
	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/logging"
	"github.com/lunarhue/agentic/model"
)

// Stream delivers the events of a streaming run in machine order. It is
// pull-based and not safe for concurrent use:
//
//	stream, err := r.RunStream(ctx, ag, "hi")
//	if err != nil { ... }
//	defer stream.Close()
//	for stream.Next() {
//		ev := stream.Current()
//		...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Close cancels the run; it is safe to call more than once and after the
// stream is exhausted.
type Stream struct {
	ch      chan core.RunEvent
	cancel  context.CancelFunc
	current core.RunEvent
	runErr  error // written by the producer before ch closes
	err     error
	closed  bool
}

// Next advances to the next event, returning false when the run has ended.
func (s *Stream) Next() bool {
	if s.closed {
		return false
	}
	ev, ok := <-s.ch
	if !ok {
		s.err = s.runErr
		s.closed = true
		return false
	}
	s.current = ev
	return true
}

// Current returns the event Next advanced to.
func (s *Stream) Current() core.RunEvent { return s.current }

// Err returns the error that ended the run, once Next has returned false.
// Nil after a clean terminal turn or an explicit Close.
func (s *Stream) Err() error { return s.err }

// Close cancels the run context and drains the remaining events so the
// producing goroutine always exits.
func (s *Stream) Close() error {
	s.cancel()
	for range s.ch {
	}
	s.closed = true
	return nil
}

// send delivers one event unless the run context is done.
func (s *Stream) send(ctx context.Context, ev core.RunEvent) bool {
	select {
	case s.ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// RunStream executes the agent like Run but emits every stream event as it
// arrives, wrapped with cumulative output and usage. Tool calls finalized
// during a turn are dispatched between turns, each completed execution
// surfacing as a synthetic ToolOutputDone event. Preparation and capability
// errors are returned directly; errors during the run surface via Err()
// after the stream ends.
func (r *Runner) RunStream(ctx context.Context, ag *agent.Agent, input model.Input, opts ...RunOption) (*Stream, error) {
	st, err := r.prepare(ctx, ag, input, opts)
	if err != nil {
		return nil, err
	}

	sa := st.model.StreamAdapter()
	if !sa.SupportsStreaming() {
		return nil, core.NewExecutionError("model '%s' does not support streaming", st.model.Info().Provider)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Stream{ch: make(chan core.RunEvent), cancel: cancel}

	r.logger.Debug(
		"run.stream.start",
		"run_id", st.id,
		"agent", ag.Name(),
		"provider", st.model.Info().Provider,
		"max_iterations", ag.MaxIterations(),
	)

	go func() {
		err := r.runStreaming(runCtx, st, sa, s)
		r.hooks.runEnd(runCtx, RunInfo{RunID: st.id, Agent: st.agent.Name(), Turns: st.turns, Err: err})
		if err != nil && runCtx.Err() == nil {
			r.logger.Error("run.stream.failed", append([]any{"run_id", st.id}, logging.ErrorAttrs(err)...)...)
		}
		s.runErr = err
		close(s.ch)
		cancel()
	}()

	return s, nil
}

// streamedTurn is what one streamed model turn produced.
type streamedTurn struct {
	text  string
	calls []core.ToolCall
}

func (r *Runner) runStreaming(ctx context.Context, st *runState, sa model.StreamAdapter, s *Stream) error {
	var output strings.Builder

	for iteration := 1; iteration <= st.agent.MaxIterations(); iteration++ {
		st.turns = iteration
		r.hooks.turnStart(ctx, TurnInfo{RunID: st.id, Agent: st.agent.Name(), Iteration: iteration})
		r.logger.Debug("run.stream.turn", "run_id", st.id, "iteration", iteration)

		chunks, err := st.model.GenerateStream(ctx, st.req)
		if err != nil {
			return err
		}

		turn, err := r.consumeTurn(ctx, st, sa, s, chunks, &output)
		if err != nil {
			return err
		}

		if len(turn.calls) == 0 {
			var finalWire []model.WireMessage
			if turn.text != "" {
				finalWire = sa.BuildToolCallMessage(turn.text, nil)
			}
			if err := r.saveSession(ctx, st, finalWire); err != nil {
				return err
			}
			st.timing.End = time.Now()
			r.logger.Debug("run.stream.complete", "run_id", st.id, "turns", st.turns)
			return nil
		}

		st.req.Messages = append(st.req.Messages, sa.BuildToolCallMessage(turn.text, turn.calls)...)
		for _, call := range turn.calls {
			out, err := r.dispatch(ctx, st, iteration, call)
			if err != nil {
				return err
			}
			done := core.ToolOutputDone{CallID: call.CallID, Name: call.Name, Output: out}
			if !s.send(ctx, core.RunEvent{Output: output.String(), Event: done, Timing: core.Timing{Start: st.timing.Start}}) {
				return ctx.Err()
			}
			st.req.Messages = append(st.req.Messages, sa.BuildToolOutputMessage(call.CallID, call.Name, out)...)
		}
	}

	return r.maxIterationsError(st)
}

// consumeTurn drains one turn's event stream, forwarding every event with
// run-level progress attached. Delta text drives the cumulative output;
// completion text is a fallback for providers that never sent deltas this
// turn. Finalized tool calls need a call id and a name to dispatch.
func (r *Runner) consumeTurn(ctx context.Context, st *runState, sa model.StreamAdapter, s *Stream, chunks model.ChunkStream, output *strings.Builder) (streamedTurn, error) {
	es := sa.Process(chunks)
	defer es.Close()

	var turn streamedTurn
	var turnText strings.Builder
	sawDelta := false

	for es.Next() {
		ev := es.Current()
		switch e := ev.(type) {
		case core.MessageDelta:
			sawDelta = true
			output.WriteString(e.Delta)
			turnText.WriteString(e.Delta)
		case core.MessageDone:
			if !sawDelta && e.Text != "" {
				output.WriteString(e.Text)
				turnText.WriteString(e.Text)
			}
		case core.ToolCallDone:
			if e.CallID != "" && e.Name != "" {
				turn.calls = append(turn.calls, core.ToolCall{
					CallID:    e.CallID,
					Name:      e.Name,
					Arguments: core.NormalizeArguments(e.Arguments),
				})
			}
		}
		st.addUsage(core.EventUsage(ev))

		wrapped := core.RunEvent{
			Output: output.String(),
			Event:  ev,
			Usage:  st.usageSnapshot(),
			Timing: core.Timing{Start: st.timing.Start},
		}
		if !s.send(ctx, wrapped) {
			return turn, ctx.Err()
		}
	}
	if err := es.Err(); err != nil {
		return turn, err
	}

	turn.text = turnText.String()
	return turn, nil
}
