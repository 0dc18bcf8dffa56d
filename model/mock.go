package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
)

// Step is one scripted MockModel turn: either a Response or an error.
type Step struct {
	Response Response
	Err      error
}

// TextStep scripts a final assistant text answer.
func TextStep(text string) Step {
	return Step{Response: Response{
		Content:      core.NewTextContent(core.RoleAssistant, text),
		FinishReason: "stop",
		Usage:        &TokenUsage{PromptTokens: 10, CompletionTokens: len(text), TotalTokens: 10 + len(text)},
	}}
}

// ToolCallStep scripts an assistant turn requesting the given function calls.
func ToolCallStep(calls ...core.FunctionCall) Step {
	parts := make([]core.Part, 0, len(calls))
	for _, c := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: c})
	}
	return Step{Response: Response{
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: "tool_calls",
		Usage:        &TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
}

// ErrorStep scripts a failed generation.
func ErrorStep(err error) Step { return Step{Err: err} }

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// Scripted steps are consumed in order; once exhausted it falls back to
// canned per-prompt answers registered with AddResponse.
type MockModel struct {
	info      Info
	mu        sync.Mutex
	responses map[string]string
	script    []Step
	requests  []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends scripted steps.
func (m *MockModel) Enqueue(steps ...Step) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, steps...)
	return m
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockModel) next(req Request) Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		s := m.script[0]
		m.script = m.script[1:]
		return s
	}

	var inputText string
	for i := len(req.Contents) - 1; i >= 0; i-- {
		if req.Contents[i].Role == core.RoleUser {
			inputText = req.Contents[i].Text()
			break
		}
	}

	full, ok := m.responses[inputText]
	if !ok {
		full = fmt.Sprintf("Mock response to: %s", inputText)
	}

	return TextStep(full)
}

// Generate implements Model; emits optional streaming char chunks then final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}

		step := m.next(req)
		if step.Err != nil {
			errCh <- step.Err
			return
		}

		if text := step.Response.Content.Text(); req.Stream && text != "" {
			for _, r := range text {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.NewTextContent(core.RoleAssistant, string(r)),
				}:
				}
			}
		}

		final := step.Response
		final.Partial = false
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- final:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
