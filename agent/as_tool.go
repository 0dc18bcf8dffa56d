package agent

import (
	"fmt"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// DelegateArgs is the input of a tool created by AsTool.
type DelegateArgs struct {
	Prompt string `json:"prompt" description:"task for the delegate agent" validate:"required"`
}

// AsTool exposes a as a tool. The calling model supplies the prompt; depsFn
// derives the delegate's deps from the caller's tool context (nil passes the
// zero value). Usage of the delegate run is added to the caller's run.
//
// The delegate run has no tool deadline of its own; it is bounded by the
// caller's context and the delegate's own limits. A failed delegate run is a
// non-retryable error of the tool name.
func AsTool[D any](a *Agent[D], name, description string, depsFn func(tc *core.ToolContext) (D, error)) tool.Tool {
	return tool.NewTypedTool(name, description, func(tc *core.ToolContext, in DelegateArgs) (string, error) {
		var deps D
		if depsFn != nil {
			d, err := depsFn(tc)
			if err != nil {
				return "", fmt.Errorf("resolve deps for %s: %w", a.Name(), err)
			}
			deps = d
		}

		tc.Logger().Debug("agent.delegate.start", "delegate", a.Name())

		res, err := a.Run(tc.Context(), in.Prompt, deps)
		if err != nil {
			return "", tool.NewExecutionError(name, err)
		}

		tc.RunContext().AddUsage(res.Usage)

		return res.Output, nil
	}).WithTimeout(0)
}
