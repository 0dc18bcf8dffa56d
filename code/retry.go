package code

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentkit/logging"
)

// RetryExecutor re-runs a failing snippet up to MaxRetries times and renders
// the outcome as text for the model. Failures never surface as Go errors
// except for cancellation; the model sees the final trace instead.
type RetryExecutor struct {
	executor   Executor
	maxRetries int
	logger     logging.Logger
}

// NewRetryExecutor wraps executor. maxRetries < 0 is treated as 0.
func NewRetryExecutor(executor Executor, maxRetries int, logger logging.Logger) *RetryExecutor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RetryExecutor{executor: executor, maxRetries: maxRetries, logger: logger}
}

// Run executes code. On success it returns "Tool output:\n" followed by the
// output or "(no output)"; after the last failed attempt it returns
// "Execution failed after N attempts.\nError:\n" followed by the trace.
//
// A per-attempt timeout counts as a failed attempt. When ctx's deadline
// passes, the attempts made so far are reported; only cancellation is
// returned as an error.
func (r *RetryExecutor) Run(ctx context.Context, code string) (string, error) {
	var (
		lastErr  error
		attempts int
	)

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		out, err := r.executor.Execute(ctx, code)
		attempts++
		if err == nil {
			if out == "" {
				out = "(no output)"
			}
			return "Tool output:\n" + out, nil
		}

		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		if ctx.Err() != nil {
			lastErr = fmt.Errorf("%w: deadline reached before all attempts ran", ErrTimeout)
			break
		}

		lastErr = err
		if attempt < r.maxRetries {
			r.logger.Warn("code.execute.retry", "attempt", attempts, "error", err.Error())
		}
	}

	r.logger.Error("code.execute.failed", "attempts", attempts, "error", lastErr.Error())

	return fmt.Sprintf("Execution failed after %d attempts.\nError:\n%s", attempts, lastErr.Error()), nil
}
