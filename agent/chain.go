package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentkit/core"
)

// ChainStep is one stage of a Chain. Agents with different dependency types
// are erased to steps with Then.
type ChainStep struct {
	Name   string
	Prompt string
	run    func(ctx context.Context, prompt string, history []core.Message) (*Result, error)
}

// Then builds a chain step running a with prompt and deps.
func Then[D any](a *Agent[D], prompt string, deps D) ChainStep {
	return ChainStep{
		Name:   a.Name(),
		Prompt: prompt,
		run: func(ctx context.Context, prompt string, history []core.Message) (*Result, error) {
			return a.Run(ctx, prompt, deps, WithHistory(history))
		},
	}
}

// Chain executes steps in order. Each step receives the messages produced by
// the previous step as history; the first step starts with history. Errors
// stop further processing immediately.
func Chain(ctx context.Context, history []core.Message, steps ...ChainStep) ([]*Result, error) {
	results := make([]*Result, 0, len(steps))

	for i, step := range steps {
		res, err := step.run(ctx, step.Prompt, history)
		if err != nil {
			return results, fmt.Errorf("chain step %d (%s) failed: %w", i, step.Name, err)
		}

		results = append(results, res)
		history = res.NewMessages()
	}

	return results, nil
}
