package flow

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentkit/core"
	internalutil "github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/model"
)

// InstructionsProcessor resolves the system prompt and renders it as a Go
// template against the run: {{.Deps}}, {{.Agent}}, {{.Now}}.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest sets req.Instructions.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, st *RequestState) error {
	instructions, err := st.Agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	rendered, err := internalutil.RenderTemplate(instructions, map[string]any{
		"Deps":  runCtx.Deps,
		"Agent": runCtx.AgentName,
		"Now":   time.Now().Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return fmt.Errorf("failed to render instruction: %w", err)
	}

	runCtx.LogDebug("flow.instruction.resolved", "length", len(rendered))

	req.Instructions = rendered

	return nil
}

// HistoryProcessor trims replayed history to the configured message count
// and token budget. The trimmed window always starts at a user message so
// tool results are never separated from their calls.
type HistoryProcessor struct{}

// NewHistoryProcessor creates a new history processor.
func NewHistoryProcessor() *HistoryProcessor { return &HistoryProcessor{} }

// Name returns the processor's identifier.
func (p *HistoryProcessor) Name() string { return "history" }

// ProcessRequest trims st.Messages.
func (p *HistoryProcessor) ProcessRequest(runCtx *core.RunContext, _ *model.Request, st *RequestState) error {
	start := 0
	n := len(st.Messages)

	if max := st.Config.MaxHistoryMessages; max > 0 && n > max {
		start = n - max
	}

	if budget := st.Config.MaxHistoryTokens; budget > 0 {
		counter := st.Config.TokenCounter
		if counter == nil {
			counter = DefaultTokenCounter()
		}
		used := 0
		i := n - 1
		for ; i >= start; i-- {
			used += counter.Count(st.Messages[i].Text())
			if used > budget {
				break
			}
		}
		if i+1 > start {
			start = i + 1
		}
	}

	if start > st.Pinned {
		start = st.Pinned
	}

	for start < st.Pinned && st.Messages[start].Role() != core.RoleUser {
		start++
	}

	if start > 0 {
		runCtx.LogDebug("flow.history.trimmed", "dropped", start, "kept", n-start)
		st.Messages = st.Messages[start:]
		st.Pinned -= start
	}

	return nil
}

// ContentsProcessor converts the message window into request contents.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest fills req.Contents.
func (p *ContentsProcessor) ProcessRequest(_ *core.RunContext, req *model.Request, st *RequestState) error {
	contents := make([]core.Content, 0, len(st.Messages))
	for _, m := range st.Messages {
		if m.Partial || len(m.Content.Parts) == 0 {
			continue
		}
		contents = append(contents, m.Content)
	}

	req.Contents = contents
	return nil
}
