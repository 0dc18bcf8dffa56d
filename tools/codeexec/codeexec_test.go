package codeexec

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/code"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

func toolCtx() *core.ToolContext {
	rc := core.NewRunContext(context.Background(), "executor", nil, 0, logging.NoOpLogger{})
	return core.NewToolContext(rc, "1", "execute_code", 0)
}

func TestExecuteCode(t *testing.T) {
	var got string
	fake := code.ExecutorFunc(func(_ context.Context, src string) (string, error) {
		got = src
		return "45\n", nil
	})

	out, err := New(fake, 3).Call(toolCtx(), map[string]any{"code": "Here:\n```python\nprint(sum(range(10)))\n```"})
	require.NoError(t, err)
	assert.Equal(t, "Tool output:\n45\n", out)
	assert.Equal(t, "print(sum(range(10)))", got)
}

func TestExecuteCode_Fails(t *testing.T) {
	calls := 0
	fake := code.ExecutorFunc(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("Traceback: ZeroDivisionError")
	})

	out, err := New(fake, 2).Call(toolCtx(), map[string]any{"code": "1/0"})
	require.NoError(t, err)
	assert.Equal(t, "Execution failed after 3 attempts.\nError:\nTraceback: ZeroDivisionError", out)
	assert.Equal(t, 3, calls)
}

type hangingExecutor struct {
	attempt time.Duration
	calls   int
}

func (h *hangingExecutor) AttemptTimeout() time.Duration { return h.attempt }

func (h *hangingExecutor) Execute(ctx context.Context, _ string) (string, error) {
	h.calls++
	select {
	case <-time.After(h.attempt):
		return "", fmt.Errorf("%w after %s", code.ErrTimeout, h.attempt)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestExecuteCode_HangingSnippet(t *testing.T) {
	hang := &hangingExecutor{attempt: 20 * time.Millisecond}

	llm := model.NewMockModel("mock", "mock").Enqueue(
		model.ToolCallStep(core.FunctionCall{Name: "execute_code", Arguments: `{"code":"while True: pass"}`}),
		model.TextStep("The code never finished."),
	)
	// The agent's own tool deadline is shorter than all attempts together.
	executor, err := agent.New[deps.None]("code_executor", llm, func(o *agent.Options) {
		o.Tools = []tool.Tool{New(hang, 2)}
		o.ToolTimeout = 30 * time.Millisecond
	})
	require.NoError(t, err)

	res, err := executor.Run(context.Background(), "run it", deps.None{})
	require.NoError(t, err)
	assert.Equal(t, 3, hang.calls)
	assert.Equal(t, "Execution failed after 3 attempts.\nError:\ncode execution timed out after 20ms",
		res.NewMessages()[2].FunctionResponses()[0].Response)
}

func TestNewPython_Budget(t *testing.T) {
	timed, ok := NewPython().(tool.Timeouter)
	require.True(t, ok)

	d, set := timed.Timeout()
	assert.True(t, set)
	assert.Equal(t, Budget(30*time.Second, DefaultMaxRetries), d)
	assert.Greater(t, d, 4*30*time.Second)
}

func TestBudget(t *testing.T) {
	assert.Equal(t, 3*time.Second+3*budgetSlack, Budget(time.Second, 2))
	assert.Equal(t, time.Second+budgetSlack, Budget(time.Second, -1))
	assert.Zero(t, Budget(0, 3))
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  print(1)\n", "print(1)"},
		{"fenced", "```python\nprint(1)\n```", "print(1)"},
		{"two blocks", "a\n```\nx = 1\n```\nb\n```py\nprint(x)\n```", "x = 1\n\nprint(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.in))
		})
	}
}
