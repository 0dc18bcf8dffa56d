package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is the cause recorded when the model calls a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrNoPrompt is returned when a run has neither a prompt nor a trailing user message.
	ErrNoPrompt = errors.New("no prompt")

	// ErrNoFinalResponse is returned when a model stream ends without a final chunk.
	ErrNoFinalResponse = errors.New("model returned no final response")
)

// MaxRetriesError aborts a run when a tool fails more often in a row than
// the configured retry count allows.
type MaxRetriesError struct {
	Tool    string
	Retries int
	Cause   error
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("tool %q exceeded max retries count of %d: %v", e.Tool, e.Retries, e.Cause)
}

// Unwrap returns the last failure.
func (e *MaxRetriesError) Unwrap() error { return e.Cause }

// ModelError wraps the last model failure after all retries were used.
type ModelError struct {
	Attempts int
	Cause    error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model request failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

// Unwrap returns the last failure.
func (e *ModelError) Unwrap() error { return e.Cause }
