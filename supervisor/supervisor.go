package supervisor

import (
	"errors"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/flow"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// Instructions steer the free-text supervisor.
const Instructions = `You are a supervisor agent. Be concise.
You divide tasks across other agents registered as your tools. Use the user prompt as a hint to call the right one.
Any mention of a PDF: call pdf_extractor.
Solving and executing coding tasks: call coder.
Web searches: call web_search.
Do not change the other agents' responses, pass their answers back.
If you receive a test and cannot find the PDF, just tell what the test is.
Never answer test questions; if you receive a test with answers, remove the answers.`

// RouteArgs is the input of a route tool.
type RouteArgs struct {
	Prompt string `json:"prompt,omitempty" description:"task, question or search query for the delegate"`
}

// Tool exposes r to a supervising model. The supervisor's deps decide
// whether PDF content is chained into a test. Handlers run without a tool
// deadline. A delegate that ran out of retries fails the route for good.
func (r Route) Tool() tool.Tool {
	return tool.NewDepsTool(r.Name, r.Description, func(tc *core.ToolContext, chain deps.ChainTests, in RouteArgs) (string, error) {
		reply, err := r.Handler(tc.Context(), Request{Prompt: in.Prompt, ChainTests: chain})
		if err != nil {
			var exhausted *flow.MaxRetriesError
			if tool.IsRetryable(err) && !errors.As(err, &exhausted) {
				return "", err
			}
			return "", tool.NewExecutionError(r.Name, err)
		}

		tc.RunContext().AddUsage(reply.Usage)

		return reply.Output, nil
	}).WithTimeout(0)
}

// Toolset bundles route tools.
func Toolset(routes ...Route) *tool.Toolset {
	ts := tool.NewToolset("supervisor")
	for _, r := range routes {
		ts.Add(r.Tool())
	}
	return ts
}

// New builds a free-text supervisor over routes. Defaults to Instructions
// and three retries; optFns may override both.
func New(llm model.Model, routes []Route, optFns ...func(o *agent.Options)) (*agent.Agent[deps.ChainTests], error) {
	fns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromText(Instructions)
		o.Retries = 3
		o.Toolsets = append(o.Toolsets, Toolset(routes...))
	}}, optFns...)

	return agent.New[deps.ChainTests]("supervisor", llm, fns...)
}
