package agent

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/flow"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	Instruction        Instruction
	Retries            int
	RetryBackoff       time.Duration
	Tools              []tool.Tool
	Toolsets           []*tool.Toolset
	MaxModelCalls      int
	MaxHistoryMessages int
	MaxHistoryTokens   int
	TokenCounter       flow.TokenCounter
	ToolTimeout        time.Duration
	Settings           model.Settings
	Logger             logging.Logger
}

// Agent binds a model, instructions and toolsets to a dependency type D. The
// deps value is supplied per run and reaches tools through the ToolContext.
//
// An Agent is immutable after construction and safe for concurrent runs.
type Agent[D any] struct {
	name     string
	llm      model.Model
	opts     Options
	toolsets []*tool.Toolset
}

// New creates a new agent.
//
// The agent is initialized with:
//   - Instruction "You are {name}, a helpful AI assistant."
//   - One retry for model requests and for retryable tool failures
//   - 15-second timeout for tool calls
//   - No history limits
//
// Tools whose dependency type differs from D are rejected.
func New[D any](name string, llm model.Model, optFns ...func(o *Options)) (*Agent[D], error) {
	if llm == nil {
		return nil, fmt.Errorf("agent %s: model is required", name)
	}

	opts := Options{
		Instruction:  NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		Retries:      1,
		RetryBackoff: 500 * time.Millisecond,
		ToolTimeout:  15 * time.Second,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Retries < 0 {
		return nil, fmt.Errorf("agent %s: retries must not be negative", name)
	}

	toolsets := make([]*tool.Toolset, 0, len(opts.Toolsets)+1)
	if len(opts.Tools) > 0 {
		toolsets = append(toolsets, tool.NewToolset(name, opts.Tools...))
	}
	toolsets = append(toolsets, opts.Toolsets...)

	tools, err := tool.Resolve(toolsets...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	if err := checkDeps[D](tools); err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	return &Agent[D]{
		name:     name,
		llm:      llm,
		opts:     opts,
		toolsets: toolsets,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew[D any](name string, llm model.Model, optFns ...func(o *Options)) *Agent[D] {
	a, err := New[D](name, llm, optFns...)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the agent's display name.
func (a *Agent[D]) Name() string { return a.name }

// Model returns the language model instance.
func (a *Agent[D]) Model() model.Model { return a.llm }

// ResolveInstructions produces the unrendered system prompt.
func (a *Agent[D]) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.opts.Instruction.Resolve(runCtx)
}

// Tools returns the agent's default tools in registration order.
func (a *Agent[D]) Tools() []tool.Tool {
	tools, _ := tool.Resolve(a.toolsets...)
	return tools
}

// RunOptions holds per run settings.
type RunOptions struct {
	History       []core.Message
	Toolsets      []*tool.Toolset
	OverrideTools []*tool.Toolset
	Override      bool
}

// WithHistory continues the conversation recorded in history.
func WithHistory(history []core.Message) func(o *RunOptions) {
	return func(o *RunOptions) { o.History = history }
}

// WithToolsets makes extra toolsets available for one run.
func WithToolsets(toolsets ...*tool.Toolset) func(o *RunOptions) {
	return func(o *RunOptions) { o.Toolsets = append(o.Toolsets, toolsets...) }
}

// WithOverrideTools replaces every agent tool for one run. Passing no
// toolsets runs without tools.
func WithOverrideTools(toolsets ...*tool.Toolset) func(o *RunOptions) {
	return func(o *RunOptions) {
		o.Override = true
		o.OverrideTools = toolsets
	}
}

// Run sends prompt to the model, executes requested tools and returns once the
// model answers without tool calls.
func (a *Agent[D]) Run(ctx context.Context, prompt string, deps D, optFns ...func(o *RunOptions)) (*Result, error) {
	return a.run(ctx, prompt, deps, false, nil, optFns...)
}

func (a *Agent[D]) run(ctx context.Context, prompt string, deps D, stream bool, deltas chan<- string, optFns ...func(o *RunOptions)) (*Result, error) {
	ro := RunOptions{}
	for _, fn := range optFns {
		fn(&ro)
	}

	tools, err := a.runTools(ro)
	if err != nil {
		return nil, err
	}

	runCtx := core.NewRunContext(ctx, a.name, deps, a.opts.MaxModelCalls, a.opts.Logger)

	runCtx.LogInfo("agent.run.start",
		"tools", len(tools),
		"history", len(ro.History),
		"stream", stream,
	)

	start := time.Now()

	fl := flow.NewSingleAgentFlow(a, flow.Config{
		Retries:            a.opts.Retries,
		RetryBackoff:       a.opts.RetryBackoff,
		Stream:             stream,
		ToolTimeout:        a.opts.ToolTimeout,
		MaxHistoryMessages: a.opts.MaxHistoryMessages,
		MaxHistoryTokens:   a.opts.MaxHistoryTokens,
		TokenCounter:       a.opts.TokenCounter,
		Settings:           a.opts.Settings,
	})

	msgCh, errCh := fl.Execute(runCtx, flow.Input{
		History: ro.History,
		Prompt:  prompt,
		Tools:   tools,
	})

	var newMessages []core.Message
	for msg := range msgCh {
		if msg.Partial {
			if deltas != nil {
				if text := msg.Text(); text != "" {
					select {
					case deltas <- text:
					case <-ctx.Done():
					}
				}
			}
			continue
		}
		newMessages = append(newMessages, msg)
	}

	usage := runCtx.Usage()

	if err := <-errCh; err != nil {
		runCtx.LogError("agent.run.error",
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("agent %s: %w", a.name, err)
	}

	result := newResult(ro.History, newMessages, usage)

	runCtx.LogInfo("agent.run.finish",
		"duration_ms", time.Since(start).Milliseconds(),
		"messages", len(newMessages),
		"requests", usage.Requests,
		"total_tokens", usage.TotalTokens,
	)

	return result, nil
}

func (a *Agent[D]) runTools(ro RunOptions) ([]tool.Tool, error) {
	var sets []*tool.Toolset
	if ro.Override {
		sets = ro.OverrideTools
	} else {
		sets = append(append(sets, a.toolsets...), ro.Toolsets...)
	}

	tools, err := tool.Resolve(sets...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.name, err)
	}

	if err := checkDeps[D](tools); err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.name, err)
	}

	return tools, nil
}

// checkDeps rejects tools that read a dependency type the agent cannot supply.
func checkDeps[D any](tools []tool.Tool) error {
	want := reflect.TypeOf((*D)(nil)).Elem()

	for _, t := range tools {
		typed, ok := t.(tool.DepsTyped)
		if !ok {
			continue
		}
		have := typed.DepsType()
		if have == nil || have == want {
			continue
		}
		if have.Kind() == reflect.Interface && want.Implements(have) {
			continue
		}
		return fmt.Errorf("%w: tool %q wants %s, agent supplies %s", core.ErrDepsMismatch, t.Name(), have, want)
	}

	return nil
}

var _ flow.FlowAgent = (*Agent[struct{}])(nil)
