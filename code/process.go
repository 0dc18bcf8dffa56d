package code

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ProcessConfig configures a ProcessExecutor.
type ProcessConfig struct {
	// Interpreter is the program that runs the snippet file, e.g. "python3".
	Interpreter string
	// Args are passed before the snippet file name.
	Args []string
	// Extension of the snippet file, e.g. ".py".
	Extension string
	// Timeout bounds one execution; zero means 30 seconds.
	Timeout time.Duration
	// MaxOutputBytes truncates stdout and stderr; zero means 64 KiB.
	MaxOutputBytes int
	// Env is the complete environment of the child process.
	Env []string
}

// DefaultPythonConfig runs snippets with python3.
func DefaultPythonConfig() ProcessConfig {
	return ProcessConfig{
		Interpreter:    "python3",
		Extension:      ".py",
		Timeout:        30 * time.Second,
		MaxOutputBytes: 64 << 10,
		Env:            []string{"PATH=/usr/local/bin:/usr/bin:/bin", "PYTHONDONTWRITEBYTECODE=1", "PYTHONIOENCODING=utf-8"},
	}
}

// ProcessExecutor writes each snippet to a fresh temp directory and runs the
// interpreter on it.
type ProcessExecutor struct {
	cfg ProcessConfig
}

// NewProcessExecutor creates an executor.
func NewProcessExecutor(cfg ProcessConfig) *ProcessExecutor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = 64 << 10
	}
	return &ProcessExecutor{cfg: cfg}
}

// AttemptTimeout bounds one Execute call.
func (e *ProcessExecutor) AttemptTimeout() time.Duration { return e.cfg.Timeout }

// Execute runs code and returns stdout. A non-zero exit yields *ExitError
// with stderr as the trace.
func (e *ProcessExecutor) Execute(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyCode
	}
	if e.cfg.Interpreter == "" {
		return "", errors.New("code: interpreter is required")
	}

	dir, err := os.MkdirTemp("", "agentkit-code-*")
	if err != nil {
		return "", fmt.Errorf("code: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "snippet"+e.cfg.Extension)
	if err := os.WriteFile(file, []byte(code), 0o600); err != nil {
		return "", fmt.Errorf("code: write snippet: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	args := append(append([]string{}, e.cfg.Args...), file)
	cmd := exec.CommandContext(runCtx, e.cfg.Interpreter, args...)
	cmd.Dir = dir
	cmd.Env = append([]string{"HOME=" + dir, "TMPDIR=" + dir}, e.cfg.Env...)

	stdout := &cappedBuffer{max: e.cfg.MaxOutputBytes}
	stderr := &cappedBuffer{max: e.cfg.MaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	err = cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return stdout.String(), fmt.Errorf("%w after %s", ErrTimeout, e.cfg.Timeout)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExitError{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("code: run %s: %w", e.cfg.Interpreter, err)
	}

	return stdout.String(), nil
}

// cappedBuffer keeps the first max bytes and drops the rest.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
			b.truncated = true
		} else {
			b.buf.Write(p)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n[output truncated]"
	}
	return b.buf.String()
}
