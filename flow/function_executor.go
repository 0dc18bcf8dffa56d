package flow

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// FunctionExecutor executes a batch of function calls from one model turn.
// Implementations must:
//   - Respect runCtx.Context cancellation
//   - Never panic (recover internally and report a fatal error)
//   - Return exactly one FunctionResponse per call, in call order
//
// Retryable failures are returned as outcomes whose response has Retry set;
// any other failure is returned as the error and aborts the run.
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agentName string, registry map[string]tool.Tool, calls []core.FunctionCall, retries map[string]int) ([]Outcome, error)
}

// Outcome is the result of one function call.
type Outcome struct {
	Response core.FunctionResponse
	// Cause is the retryable error behind a Retry response.
	Cause error
}

// FunctionExecutorConfig configures the default parallel executor.
type FunctionExecutorConfig struct {
	MaxParallel int           // 0 or <1 => no explicit limit (len(calls))
	Timeout     time.Duration // per call; 0 disables; tool.Timeouter overrides
}

// parallelFunctionExecutor is the default implementation.
type parallelFunctionExecutor struct {
	cfg FunctionExecutorConfig
}

// NewParallelFunctionExecutor constructs a new executor with the given config.
func NewParallelFunctionExecutor(cfg FunctionExecutorConfig) FunctionExecutor {
	return &parallelFunctionExecutor{cfg: cfg}
}

type callResult struct {
	out Outcome
	err error
}

func (e *parallelFunctionExecutor) Execute(
	runCtx *core.RunContext,
	agentName string,
	registry map[string]tool.Tool,
	calls []core.FunctionCall,
	retries map[string]int,
) ([]Outcome, error) {
	n := len(calls)
	if n == 0 {
		return nil, nil
	}

	results := make([]callResult, n)

	// Fast path: single call, execute inline.
	if n == 1 {
		results[0] = e.executeSingle(runCtx, agentName, registry, calls[0], retries[calls[0].Name])
	} else {
		maxPar := e.cfg.MaxParallel
		if maxPar <= 0 || maxPar > n {
			maxPar = n
		}

		var wg sync.WaitGroup
		sem := make(chan struct{}, maxPar)

		batchStart := time.Now()
		for i := range calls {
			wg.Add(1)
			sem <- struct{}{}
			go func(idx int, fc core.FunctionCall, retry int) {
				defer wg.Done()
				defer func() { <-sem }()
				results[idx] = e.executeSingle(runCtx, agentName, registry, fc, retry)
			}(i, calls[i], retries[calls[i].Name])
		}
		wg.Wait()

		runCtx.LogDebug(
			"agent.functions.batch.complete",
			"agent", agentName,
			"count", n,
			"parallelism", maxPar,
			"duration_ms", time.Since(batchStart).Milliseconds(),
		)
	}

	if err := runCtx.Err(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, n)
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		outcomes[i] = r.out
	}

	return outcomes, nil
}

func (e *parallelFunctionExecutor) executeSingle(
	runCtx *core.RunContext,
	agentName string,
	registry map[string]tool.Tool,
	fc core.FunctionCall,
	retry int,
) callResult {
	resp := core.FunctionResponse{ID: fc.ID, Name: fc.Name}

	impl, ok := registry[fc.Name]
	if !ok {
		runCtx.LogWarn("agent.function.unknown", "agent", agentName, "function", fc.Name)
		resp.Error = fmt.Sprintf("Unknown tool name: %q. %s", fc.Name, availableTools(registry))
		resp.Retry = true
		return callResult{out: Outcome{Response: resp, Cause: fmt.Errorf("%w: %s", ErrUnknownTool, fc.Name)}}
	}

	args, err := model.ParseArguments(fc.Arguments)
	if err != nil {
		resp.Error = err.Error()
		resp.Retry = true
		return callResult{out: Outcome{Response: resp, Cause: err}}
	}

	timeout := e.cfg.Timeout
	if tt, ok := impl.(tool.Timeouter); ok {
		if d, set := tt.Timeout(); set {
			timeout = d
		}
	}

	callCtx := runCtx
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(runCtx.Context, timeout)
		defer cancel()
		callCtx = runCtx.WithContext(ctx)
	}

	toolCtx := core.NewToolContext(callCtx, fc.ID, fc.Name, retry)

	start := time.Now()
	var result any
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(fc.Name, r)
				runCtx.LogError("agent.function.panic", "agent", agentName, "function", fc.Name, "recover", r)
			}
		}()
		result, err = impl.Call(toolCtx, args)
	}()

	runCtx.LogInfo(
		"agent.function.executed",
		"agent", agentName,
		"function", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		if tool.IsRetryable(err) {
			resp.Error = retryMessage(err)
			resp.Retry = true
			return callResult{out: Outcome{Response: resp, Cause: err}}
		}
		return callResult{err: fmt.Errorf("tool %s failed: %w", fc.Name, err)}
	}

	resp.Response = result
	return callResult{out: Outcome{Response: resp}}
}

func retryMessage(err error) string {
	var te *tool.ToolError
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}

func availableTools(registry map[string]tool.Tool) string {
	if len(registry) == 0 {
		return "No tools available."
	}
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("Available tools: %v", names)
}

// PanicError is returned when a tool panics.
type PanicError struct {
	Tool  string
	Value any
	Stack []byte
}

func (p *PanicError) Error() string { return fmt.Sprintf("tool %s panicked: %v", p.Tool, p.Value) }

func panicError(name string, r any) error {
	return &PanicError{Tool: name, Value: r, Stack: debug.Stack()}
}
