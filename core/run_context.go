package core

import (
	"context"
	"sync"

	"github.com/rs/xid"

	"github.com/hupe1980/agentkit/logging"
)

// RunContext carries execution state & helpers for one agent run. It
// aggregates:
//   - The ambient cancellation Context
//   - Identifiers (RunID, AgentName)
//   - The run's dependency value, immutable for the duration of the run
//   - The model call limiter and accumulated token usage
//
// A RunContext is created per Run call and discarded afterwards.
type RunContext struct {
	Context   context.Context
	RunID     string
	AgentName string
	Deps      any
	Limiter   *ModelLimiter

	usage *usageAccumulator

	scopedLog
}

// NewRunContext constructs a RunContext with a fresh run id.
func NewRunContext(
	ctx context.Context,
	agentName string,
	deps any,
	maxModelCalls int,
	logger logging.Logger,
) *RunContext {
	runID := xid.New().String()

	return &RunContext{
		Context:   ctx,
		RunID:     runID,
		AgentName: agentName,
		Deps:      deps,
		Limiter:   NewModelLimiter(maxModelCalls),
		usage:     &usageAccumulator{},
		scopedLog: scopeLog(logger, "run_id", runID, "agent", agentName),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// AddUsage accumulates usage reported by a model response.
func (rc *RunContext) AddUsage(u Usage) {
	rc.usage.mu.Lock()
	defer rc.usage.mu.Unlock()

	rc.usage.total.Add(u)
}

// Usage returns a snapshot of the accumulated usage.
func (rc *RunContext) Usage() Usage {
	rc.usage.mu.Lock()
	defer rc.usage.mu.Unlock()

	return rc.usage.total
}

// WithContext returns a copy bound to ctx sharing the limiter and the usage
// total.
func (rc *RunContext) WithContext(ctx context.Context) *RunContext {
	return &RunContext{
		Context:   ctx,
		RunID:     rc.RunID,
		AgentName: rc.AgentName,
		Deps:      rc.Deps,
		Limiter:   rc.Limiter,
		usage:     rc.usage,
		scopedLog: rc.scopedLog,
	}
}

type usageAccumulator struct {
	mu    sync.Mutex
	total Usage
}

// scopedLog is a logger tagged with the ids of a run or tool call.
type scopedLog struct {
	logger logging.Logger
}

func scopeLog(l logging.Logger, kv ...any) scopedLog {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return scopedLog{logger: logging.With(l, kv...)}
}

// Logger returns the scoped logger.
func (s scopedLog) Logger() logging.Logger { return s.logger }

// LogDebug logs at debug level.
func (s scopedLog) LogDebug(msg string, kv ...any) { s.logger.Debug(msg, kv...) }

// LogInfo logs at info level.
func (s scopedLog) LogInfo(msg string, kv ...any) { s.logger.Info(msg, kv...) }

// LogWarn logs at warn level.
func (s scopedLog) LogWarn(msg string, kv ...any) { s.logger.Warn(msg, kv...) }

// LogError logs at error level.
func (s scopedLog) LogError(msg string, kv ...any) { s.logger.Error(msg, kv...) }
