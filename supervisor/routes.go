package supervisor

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/tool"
)

// Prompts sent to the sub-agents.
const (
	PDFPrompt          = "What is the content of the PDF at this path: %s"
	TestPrompt         = "Generate a test on this topic"
	CoderPrompt        = "Solve the task: %s"
	ExecutorPrompt     = "Extract python code from text and execute it and show the result"
	WebSearchPrompt    = "Search for: %s"
	PDFRouteName       = "pdf_extractor"
	CoderRouteName     = "coder"
	WebSearchRouteName = "web_search"
)

// PDFRoute reads the document at path with extractor. When the request asks
// for tests and testGenerator is set, the extraction is chained into the
// generator and the test is returned instead.
func PDFRoute(extractor, testGenerator *agent.Agent[deps.None], path string) Route {
	return Route{
		Name:        PDFRouteName,
		Description: "Extract the content of the course PDF. Any mention of a PDF goes here.",
		Handler: func(ctx context.Context, req Request) (Reply, error) {
			steps := []agent.ChainStep{agent.Then(extractor, fmt.Sprintf(PDFPrompt, path), deps.None{})}
			if req.ChainTests && testGenerator != nil {
				steps = append(steps, agent.Then(testGenerator, TestPrompt, deps.None{}))
			}

			results, err := agent.Chain(ctx, nil, steps...)
			if err != nil {
				return Reply{}, err
			}

			usage := sumUsage(results)
			if len(results) == 2 {
				return Reply{
					Output: fmt.Sprintf("Test questions are:\n%s\n\n end of generated test questions", results[1].Output),
					Usage:  usage,
				}, nil
			}

			return Reply{Output: "PDF Content is:\n " + results[0].Output, Usage: usage}, nil
		},
	}
}

// CoderRoute lets coder solve the task, then hands coder's messages to
// executor, which runs the code.
func CoderRoute(coder, executor *agent.Agent[deps.None]) Route {
	return Route{
		Name:        CoderRouteName,
		Description: "Solve and execute coding tasks, e.g. student programming exercises.",
		Handler: func(ctx context.Context, req Request) (Reply, error) {
			if req.Prompt == "" {
				return Reply{}, tool.Retry("a task description is required")
			}

			results, err := agent.Chain(ctx, req.History,
				agent.Then(coder, fmt.Sprintf(CoderPrompt, req.Prompt), deps.None{}),
				agent.Then(executor, ExecutorPrompt, deps.None{}),
			)
			if err != nil {
				return Reply{}, err
			}

			return Reply{
				Output: fmt.Sprintf("Coder Agent returned:\n %s\nAn executor agent was called to run the code and returned:\n %s",
					results[0].Output, results[1].Output),
				Usage: sumUsage(results),
			}, nil
		},
	}
}

// WebSearchRoute delegates to searcher.
func WebSearchRoute(searcher *agent.Agent[deps.None]) Route {
	return Route{
		Name:        WebSearchRouteName,
		Description: "Search the web with a given query.",
		Handler: func(ctx context.Context, req Request) (Reply, error) {
			if req.Prompt == "" {
				return Reply{}, tool.Retry("a search query is required")
			}

			res, err := searcher.Run(ctx, fmt.Sprintf(WebSearchPrompt, req.Prompt), deps.None{}, agent.WithHistory(req.History))
			if err != nil {
				return Reply{}, err
			}

			return Reply{Output: fmt.Sprintf("Web Search Results:\n%s\nEnd of Results", res.Output), Usage: res.Usage}, nil
		},
	}
}

// AgentRoute answers with a single agent; typically the general route.
func AgentRoute(name string, a *agent.Agent[deps.None]) Route {
	return Route{
		Name:        name,
		Description: "Answer general questions.",
		Handler: func(ctx context.Context, req Request) (Reply, error) {
			res, err := a.Run(ctx, req.Prompt, deps.None{}, agent.WithHistory(req.History))
			if err != nil {
				return Reply{}, err
			}
			return Reply{Output: res.Output, Usage: res.Usage}, nil
		},
	}
}

func sumUsage(results []*agent.Result) core.Usage {
	var u core.Usage
	for _, r := range results {
		u.Add(r.Usage)
	}
	return u
}
