// Package codeexec provides the execute_code tool that runs model-written
// code through a code.RetryExecutor.
package codeexec

import (
	"time"

	"github.com/hupe1980/agentkit/code"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// DefaultMaxRetries bounds re-runs of a failing snippet.
const DefaultMaxRetries = 3

const budgetSlack = 2 * time.Second

// Args carry the code to run.
type Args struct {
	Code string `json:"code" description:"complete program source; print results to stdout" validate:"required"`
}

// New returns the execute_code tool. The result is always text: the program
// output, or the failure trace after every attempt failed.
//
// For a code.Bounded executor the tool's deadline is set to Budget so every
// attempt can run to its own timeout; other executors keep the agent's
// ToolTimeout.
func New(executor code.Executor, maxRetries int) tool.Tool {
	t := tool.NewTypedTool("execute_code", "Takes code as a string, executes it and returns the printed output.",
		func(tc *core.ToolContext, in Args) (string, error) {
			return code.NewRetryExecutor(executor, maxRetries, tc.Logger()).Run(tc.Context(), ExtractCode(in.Code))
		})

	if b, ok := executor.(code.Bounded); ok {
		t.WithTimeout(Budget(b.AttemptTimeout(), maxRetries))
	}

	return t
}

// Budget is the time needed for maxRetries+1 attempts of attempt each, plus
// slack for process start-up.
func Budget(attempt time.Duration, maxRetries int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	n := time.Duration(maxRetries + 1)
	return n*attempt + n*budgetSlack
}

// NewPython returns execute_code backed by a python3 subprocess.
func NewPython() tool.Tool {
	return New(code.NewProcessExecutor(code.DefaultPythonConfig()), DefaultMaxRetries)
}
