package core

import (
	"context"
	"fmt"
)

// ToolContext provides a constrained surface for tool implementations invoked
// by an agent: cancellation, the run's dependency value, the current retry
// count and a logger scoped to the call.
type ToolContext struct {
	runCtx         *RunContext
	functionCallID string
	toolName       string
	retry          int

	scopedLog
}

// NewToolContext constructs a tool context bound to a parent RunContext and a
// function call. retry is the number of previous failed attempts for this tool.
func NewToolContext(runCtx *RunContext, functionCallID, toolName string, retry int) *ToolContext {
	return &ToolContext{
		runCtx:         runCtx,
		functionCallID: functionCallID,
		toolName:       toolName,
		retry:          retry,
		scopedLog:      scopeLog(runCtx.Logger(), "tool", toolName, "function_call_id", functionCallID),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// RunID returns the run ID associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// AgentName returns the name of the agent that issued the call.
func (tc *ToolContext) AgentName() string { return tc.runCtx.AgentName }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// ToolName returns the invoked tool name.
func (tc *ToolContext) ToolName() string { return tc.toolName }

// Retry returns how many times this tool already failed in the current run.
func (tc *ToolContext) Retry() int { return tc.retry }

// Deps returns the untyped dependency value. Prefer DepsAs.
func (tc *ToolContext) Deps() any { return tc.runCtx.Deps }

// RunContext returns the parent run context.
func (tc *ToolContext) RunContext() *RunContext { return tc.runCtx }

// DepsAs returns the run's dependency value as D or ErrDepsMismatch.
func DepsAs[D any](tc *ToolContext) (D, error) {
	var zero D

	if d, ok := tc.runCtx.Deps.(D); ok {
		return d, nil
	}

	return zero, fmt.Errorf("%w: tool %q wants %T, run supplied %T", ErrDepsMismatch, tc.toolName, zero, tc.runCtx.Deps)
}
