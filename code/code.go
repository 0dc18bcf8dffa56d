// Package code runs model-generated code snippets in a separate interpreter
// process.
//
// ProcessExecutor is a subprocess runner bounded by a timeout, an output cap
// and a private working directory with a minimal environment. It does not
// restrict network or filesystem access; run it inside a container when the
// code is untrusted.
package code

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is returned when a snippet runs longer than the configured timeout.
	ErrTimeout = errors.New("code execution timed out")

	// ErrEmptyCode is returned for blank snippets.
	ErrEmptyCode = errors.New("no code to execute")
)

// Executor defines the interface for executing code snippets.
type Executor interface {
	// Execute runs the given code snippet and returns its standard output or
	// an error carrying the failure trace.
	Execute(ctx context.Context, code string) (string, error)
}

// Bounded is implemented by executors that stop each run after a fixed time.
type Bounded interface {
	Executor
	AttemptTimeout() time.Duration
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, code string) (string, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, code string) (string, error) { return f(ctx, code) }

// ExitError reports a snippet that ran but failed.
type ExitError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("exit status %d", e.ExitCode)
}
