package core

import "errors"

var (
	// ErrUsageLimitExceeded is returned when a run exhausts its model call budget.
	ErrUsageLimitExceeded = errors.New("usage limit exceeded")

	// ErrDepsMismatch is returned when a tool expects a dependency type the run did not supply.
	ErrDepsMismatch = errors.New("dependency type mismatch")
)
