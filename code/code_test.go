package code

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shExecutor(t *testing.T, timeout time.Duration, maxOut int) *ProcessExecutor {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return NewProcessExecutor(ProcessConfig{
		Interpreter:    "sh",
		Extension:      ".sh",
		Timeout:        timeout,
		MaxOutputBytes: maxOut,
		Env:            []string{"PATH=/usr/bin:/bin"},
	})
}

func TestProcessExecutor(t *testing.T) {
	e := shExecutor(t, 5*time.Second, 0)

	out, err := e.Execute(context.Background(), "echo 42")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)

	_, err = e.Execute(context.Background(), "echo oops >&2; exit 3")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, "oops\n", exitErr.Stderr)
}

func TestProcessExecutor_Isolation(t *testing.T) {
	e := shExecutor(t, 5*time.Second, 0)

	out, err := e.Execute(context.Background(), `echo "$SECRET"; pwd`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Empty(t, lines[0])
	assert.Contains(t, lines[1], "agentkit-code-")
}

func TestProcessExecutor_Timeout(t *testing.T) {
	e := shExecutor(t, 50*time.Millisecond, 0)

	_, err := e.Execute(context.Background(), "sleep 5")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestProcessExecutor_OutputCap(t *testing.T) {
	e := shExecutor(t, 5*time.Second, 4)

	out, err := e.Execute(context.Background(), "echo 123456789")
	require.NoError(t, err)
	assert.Equal(t, "1234\n[output truncated]", out)
}

func TestProcessExecutor_EmptyCode(t *testing.T) {
	_, err := NewProcessExecutor(DefaultPythonConfig()).Execute(context.Background(), "  \n")
	require.ErrorIs(t, err, ErrEmptyCode)
}

func TestRetryExecutor(t *testing.T) {
	tests := []struct {
		name    string
		results []error
		output  string
		retries int
		want    string
		calls   int
	}{
		{name: "success", output: "4\n", retries: 3, want: "Tool output:\n4\n", calls: 1},
		{name: "no output", retries: 3, want: "Tool output:\n(no output)", calls: 1},
		{
			name:    "recovers",
			results: []error{errors.New("flaky")},
			output:  "ok",
			retries: 3,
			want:    "Tool output:\nok",
			calls:   2,
		},
		{
			name:    "exhausted",
			results: []error{errors.New("e1"), errors.New("e2"), errors.New("e3"), errors.New("NameError: x")},
			retries: 3,
			want:    "Execution failed after 4 attempts.\nError:\nNameError: x",
			calls:   4,
		},
		{
			name:    "no retries",
			results: []error{errors.New("SyntaxError")},
			retries: 0,
			want:    "Execution failed after 1 attempts.\nError:\nSyntaxError",
			calls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			fake := ExecutorFunc(func(context.Context, string) (string, error) {
				calls++
				if calls <= len(tt.results) {
					return "", tt.results[calls-1]
				}
				return tt.output, nil
			})

			got, err := NewRetryExecutor(fake, tt.retries, nil).Run(context.Background(), "print(1)")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.calls, calls)
		})
	}
}

func TestRetryExecutor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := ExecutorFunc(func(ctx context.Context, _ string) (string, error) { return "", ctx.Err() })
	_, err := NewRetryExecutor(fake, 3, nil).Run(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRetryExecutor_AttemptTimeout(t *testing.T) {
	e := shExecutor(t, 50*time.Millisecond, 0)

	got, err := NewRetryExecutor(e, 1, nil).Run(context.Background(), "sleep 5")
	require.NoError(t, err)
	assert.Equal(t, "Execution failed after 2 attempts.\nError:\ncode execution timed out after 50ms", got)
}

func TestRetryExecutor_DeadlineReportsAttempts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	calls := 0
	hang := ExecutorFunc(func(ctx context.Context, _ string) (string, error) {
		calls++
		<-ctx.Done()
		return "", ctx.Err()
	})

	got, err := NewRetryExecutor(hang, 3, nil).Run(ctx, "while True: pass")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Execution failed after 1 attempts.\nError:\ncode execution timed out: deadline reached before all attempts ran", got)
}

func TestProcessExecutor_AttemptTimeout(t *testing.T) {
	var b Bounded = NewProcessExecutor(DefaultPythonConfig())
	assert.Equal(t, 30*time.Second, b.AttemptTimeout())
}
