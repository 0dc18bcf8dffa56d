package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/session"
)

var (
	// ErrRunInProgress is returned when a session already has an active run.
	ErrRunInProgress = errors.New("run in progress")
	// ErrNoActiveRun is returned by Cancel for idle sessions.
	ErrNoActiveRun = errors.New("no active run")
)

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	SessionStore core.SessionStore
	Logger       logging.Logger
}

// Runner runs an agent on persisted conversations. Public methods are safe
// for concurrent use.
type Runner[D any] struct {
	agent        *agent.Agent[D]
	sessionStore core.SessionStore
	logger       logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs a Runner with optional overrides. The default session store
// is in memory.
func New[D any](a *agent.Agent[D], optFns ...func(o *Options)) *Runner[D] {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner[D]{
		agent:        a,
		sessionStore: opts.SessionStore,
		logger:       opts.Logger,
		activeRuns:   make(map[string]context.CancelFunc),
	}
}

// Run continues session sessionID with prompt. The new messages are appended
// to the session only when the run succeeds.
func (r *Runner[D]) Run(ctx context.Context, sessionID, prompt string, deps D, optFns ...func(o *agent.RunOptions)) (*agent.Result, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := r.begin(sessionID, cancel); err != nil {
		return nil, err
	}
	defer r.end(sessionID)

	fns := append([]func(o *agent.RunOptions){agent.WithHistory(sess.History())}, optFns...)

	res, err := r.agent.Run(ctx, prompt, deps, fns...)
	if err != nil {
		r.logger.Warn("runner.run.failed", "session_id", sessionID, "error", err.Error())
		return nil, err
	}

	if err := r.sessionStore.Append(sessionID, res.NewMessages()...); err != nil {
		return nil, fmt.Errorf("failed to append messages to session: %w", err)
	}

	r.logger.Debug("runner.run.persisted", "session_id", sessionID, "messages", len(res.NewMessages()))

	return res, nil
}

// History returns the stored conversation of sessionID.
func (r *Runner[D]) History(sessionID string) ([]core.Message, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

// Reset forgets the conversation of sessionID.
func (r *Runner[D]) Reset(sessionID string) error {
	return r.sessionStore.Delete(sessionID)
}

// Cancel cancels the active run of sessionID.
func (r *Runner[D]) Cancel(sessionID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[sessionID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("session %s: %w", sessionID, ErrNoActiveRun)
	}

	cancel()

	return nil
}

func (r *Runner[D]) begin(sessionID string, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.activeRuns[sessionID]; busy {
		return fmt.Errorf("session %s: %w", sessionID, ErrRunInProgress)
	}
	r.activeRuns[sessionID] = cancel

	return nil
}

func (r *Runner[D]) end(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activeRuns, sessionID)
}
