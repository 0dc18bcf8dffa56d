package agent

import "context"

// Stream is a run in progress that forwards text deltas as they arrive.
type Stream struct {
	deltas chan string
	done   chan struct{}
	result *Result
	err    error
}

// Deltas returns the channel of text fragments. It is closed when the run
// ends.
func (s *Stream) Deltas() <-chan string { return s.deltas }

// Wait discards unread deltas, blocks until the run ends and returns its result.
func (s *Stream) Wait() (*Result, error) {
	for range s.deltas {
	}
	<-s.done
	return s.result, s.err
}

// RunStream is Run with streaming model output. Text deltas of every model
// turn are delivered on Stream.Deltas; the final Result comes from Wait.
func (a *Agent[D]) RunStream(ctx context.Context, prompt string, deps D, optFns ...func(o *RunOptions)) *Stream {
	s := &Stream{
		deltas: make(chan string, 16),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.deltas)

		s.result, s.err = a.run(ctx, prompt, deps, true, s.deltas, optFns...)
	}()

	return s
}
