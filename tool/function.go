package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Responsibilities:
//   - Holds a JSON-Schema-like parameter description
//   - Validates model supplied arguments against that schema before execution
//   - Invokes the wrapped function with a *core.ToolContext
//   - Normalizes error handling so callers receive *ToolError with consistent codes:
//     VALIDATION_ERROR  -> schema / argument mismatch (model may retry)
//     RETRY             -> function returned a RetryError (model may retry)
//     DEPS_MISMATCH     -> run dependency value has the wrong type
//     EXECUTION_ERROR   -> underlying function returned any other error
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	depsType    reflect.Type
	timeout     time.Duration
	timeoutSet  bool
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "add_numbers",
//	  "Add two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using reflection.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// NewTypedTool builds a tool from a function taking a typed input struct. The
// schema is derived from In; arguments are decoded into In and checked against
// its `validate` tags before fn runs.
//
//	type AddArgs struct {
//	  A float64 `json:"a" description:"first addend"`
//	  B float64 `json:"b" description:"second addend"`
//	}
//
//	add := NewTypedTool("add_numbers", "Add two numbers",
//	  func(_ *core.ToolContext, in AddArgs) (float64, error) { return in.A + in.B, nil })
func NewTypedTool[In, Out any](
	name, description string,
	fn func(toolCtx *core.ToolContext, in In) (Out, error),
) *FunctionTool {
	var zero In
	return NewFunctionTool(name, description, util.CreateSchema(zero), func(tc *core.ToolContext, args map[string]any) (any, error) {
		in, err := decodeInput[In](args)
		if err != nil {
			return nil, err
		}
		return fn(tc, in)
	})
}

// NewDepsTool is NewTypedTool for functions that also read the run's
// dependency value of type D. Registering the tool on an agent with a
// different dependency type fails.
func NewDepsTool[D, In, Out any](
	name, description string,
	fn func(toolCtx *core.ToolContext, deps D, in In) (Out, error),
) *FunctionTool {
	t := NewTypedTool(name, description, func(tc *core.ToolContext, in In) (Out, error) {
		deps, err := core.DepsAs[D](tc)
		if err != nil {
			var zero Out
			return zero, &ToolError{Tool: name, Message: err.Error(), Code: CodeDepsMismatch, cause: err}
		}
		return fn(tc, deps, in)
	})
	t.depsType = reflect.TypeOf((*D)(nil)).Elem()
	return t
}

func decodeInput[In any](args map[string]any) (In, error) {
	var in In

	b, err := json.Marshal(args)
	if err != nil {
		return in, &ValidationError{Field: "arguments", Message: err.Error()}
	}

	if err := json.Unmarshal(b, &in); err != nil {
		return in, &ValidationError{Field: "arguments", Message: err.Error()}
	}

	if err := ValidateStruct(in); err != nil {
		return in, err
	}

	return in, nil
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// DepsType returns the dependency type the tool reads, or nil.
func (t *FunctionTool) DepsType() reflect.Type { return t.depsType }

// WithTimeout overrides the agent's ToolTimeout for this tool; zero removes
// the deadline. Call it before registering the tool.
func (t *FunctionTool) WithTimeout(d time.Duration) *FunctionTool {
	t.timeout = d
	t.timeoutSet = true
	return t
}

// Timeout implements Timeouter.
func (t *FunctionTool) Timeout() (time.Duration, bool) { return t.timeout, t.timeoutSet }

// Call validates the provided args against the declared schema then invokes the
// underlying function. Failures are wrapped (or passed through) as *ToolError.
//
// Logging Fields:
//
//	tool: tool name
//	fc_id: function call identifier
//	duration_ms: execution time in milliseconds
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
			cause:   err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		toolErr := t.normalize(err)
		if toolErr.Retryable() {
			logger.Warn("tool.call.retry", "tool", t.name, "error", toolErr.Message)
		} else {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
		}

		return nil, toolErr
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

func (t *FunctionTool) normalize(err error) *ToolError {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}

	var retryErr *RetryError
	if errors.As(err, &retryErr) {
		return &ToolError{Tool: t.name, Message: retryErr.Message, Code: CodeRetry, cause: err}
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", valErr),
			Code:    CodeValidation,
			Details: valErr,
			cause:   err,
		}
	}

	return &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution, cause: err}
}
