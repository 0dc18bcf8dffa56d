// Package tool implements the function / tool calling subsystem that lets agents
// invoke structured capabilities (computations, file access, searches, sub-agents)
// with schema validated arguments and consistent error handling.
package tool

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define a JSON schema for parameters
//   - Be safe for concurrent use; one model turn may call several tools at once
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the model to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with structured arguments parsed from the model's
	// JSON payload.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// DepsTyped is implemented by tools that read the run's dependency value. The
// returned type is checked against the agent's dependency type at registration.
type DepsTyped interface {
	DepsType() reflect.Type
}

// Error codes used in ToolError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeExecution    = "EXECUTION_ERROR"
	CodeDepsMismatch = "DEPS_MISMATCH"
	CodeRetry        = "RETRY"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
	cause   error
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ToolError) Unwrap() error { return e.cause }

// Retryable reports whether the model should be asked to correct its call.
func (e *ToolError) Retryable() bool {
	return e.Code == CodeValidation || e.Code == CodeRetry
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// RetryError is returned by tool functions to ask the model to try again,
// e.g. with different arguments. The message is shown to the model.
type RetryError struct {
	Message string
}

func (e *RetryError) Error() string { return e.Message }

// Retry builds a RetryError.
func Retry(format string, args ...any) error {
	return &RetryError{Message: fmt.Sprintf(format, args...)}
}

// NewExecutionError wraps err as a non-retryable failure of tool. Retry
// signals inside err no longer reach the caller's model.
func NewExecutionError(tool string, err error) *ToolError {
	return &ToolError{Tool: tool, Message: err.Error(), Code: CodeExecution, cause: err}
}

// IsRetryable reports whether err asks the model for a corrected call. The
// outermost ToolError decides.
func IsRetryable(err error) bool {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Retryable()
	}
	var re *RetryError
	return errors.As(err, &re)
}

// Timeouter is implemented by tools that bound their own calls. When ok is
// true the returned duration replaces the agent's ToolTimeout; zero disables
// it.
type Timeouter interface {
	Timeout() (d time.Duration, ok bool)
}
