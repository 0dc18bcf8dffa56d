// Package agentkit provides a high-level façade that wires configuration,
// logging, models and stores so applications can build tool-calling agents
// in a few lines. Most programs:
//  1. Create a Kit via New (optionally overriding the default stores)
//  2. Build agents with NewAgent, one model per agent name from the config
//  3. Run them directly or through a Runner that keeps session history
//
// All defaults are safe for local development: an OpenAI-compatible Ollama
// endpoint, artifacts on the local filesystem and sessions in memory.
package agentkit

import (
	"fmt"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/config"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/runner"
	"github.com/hupe1980/agentkit/session"
)

// Options configures a Kit.
type Options struct {
	// ConfigPath is an optional YAML file; the environment is always applied.
	ConfigPath string
	// Config replaces loading from ConfigPath and the environment.
	Config *config.Config

	// Stores default to the configured artifact backend (the filesystem
	// rooted at Config.WorkDir unless set) and in-memory sessions.
	ArtifactStore artifact.Store
	SessionStore  core.SessionStore

	// Logger defaults to the logger described by the config.
	Logger logging.Logger

	// ModelFactory overrides config.NewModelFor, e.g. to inject mocks.
	ModelFactory func(cfg config.Config, agentName string) (model.Model, error)
}

// Kit aggregates configuration and shared services.
type Kit struct {
	cfg          config.Config
	store        artifact.Store
	sessions     core.SessionStore
	logger       logging.Logger
	modelFactory func(cfg config.Config, agentName string) (model.Model, error)
}

// New creates a Kit with optional overrides.
func New(optFns ...func(o *Options)) (*Kit, error) {
	opts := Options{ModelFactory: config.NewModelFor}

	for _, fn := range optFns {
		fn(&opts)
	}

	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Logger == nil {
		l, err := config.NewLogger(cfg)
		if err != nil {
			return nil, err
		}
		opts.Logger = l
	}

	if opts.ArtifactStore == nil {
		store, err := config.NewArtifactStore(cfg)
		if err != nil {
			return nil, err
		}
		opts.ArtifactStore = store
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	return &Kit{
		cfg:          cfg,
		store:        opts.ArtifactStore,
		sessions:     opts.SessionStore,
		logger:       opts.Logger,
		modelFactory: opts.ModelFactory,
	}, nil
}

// Config returns the effective configuration.
func (k *Kit) Config() config.Config { return k.cfg }

// Store returns the artifact store shared by file tools.
func (k *Kit) Store() artifact.Store { return k.store }

// Logger returns the shared logger.
func (k *Kit) Logger() logging.Logger { return k.logger }

// Model builds the model configured for agentName.
func (k *Kit) Model(agentName string) (model.Model, error) {
	m, err := k.modelFactory(k.cfg, agentName)
	if err != nil {
		return nil, fmt.Errorf("model for %s: %w", agentName, err)
	}
	return m, nil
}

// NewAgent builds an agent on the model configured for name. Retries, tool
// timeout, model call limit and logger come from the Kit; optFns run last.
func NewAgent[D any](k *Kit, name string, optFns ...func(o *agent.Options)) (*agent.Agent[D], error) {
	m, err := k.Model(name)
	if err != nil {
		return nil, err
	}

	fns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Retries = k.cfg.Retries
		o.MaxModelCalls = k.cfg.MaxModelCalls
		o.Logger = k.logger
		if k.cfg.ToolTimeout > 0 {
			o.ToolTimeout = k.cfg.ToolTimeout
		}
	}}, optFns...)

	return agent.New[D](name, m, fns...)
}

// NewRunner binds a to the Kit's session store.
func NewRunner[D any](k *Kit, a *agent.Agent[D]) *runner.Runner[D] {
	return runner.New(a, func(o *runner.Options) {
		o.SessionStore = k.sessions
		o.Logger = k.logger
	})
}
