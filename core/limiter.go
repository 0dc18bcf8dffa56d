package core

import (
	"fmt"

	"go.uber.org/atomic"
)

// ModelLimiter enforces a maximum number of allowed model calls per run.
// It is safe for concurrent use.
type ModelLimiter struct {
	max   int64
	count atomic.Int64
}

// NewModelLimiter creates a new limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{max: int64(max)}
}

// Increment increases the call counter and returns an error if the limit is exceeded.
func (ml *ModelLimiter) Increment() error {
	n := ml.count.Inc()
	if ml.max > 0 && n > ml.max {
		return fmt.Errorf("%w: exceeded max model calls: %d", ErrUsageLimitExceeded, ml.max)
	}

	return nil
}

// Count returns the current number of calls made.
func (ml *ModelLimiter) Count() int { return int(ml.count.Load()) }

// Remaining returns how many calls are left before hitting the limit.
func (ml *ModelLimiter) Remaining() int {
	if ml.max == 0 {
		return -1 // unlimited
	}

	if r := ml.max - ml.count.Load(); r > 0 {
		return int(r)
	}

	return 0
}
