// Package logging provides a minimal logging interface and adapters for agentkit.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that flows, agents and tools use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a, _ := agent.New[struct{}]("assistant", llm, agent.WithLogger(logger))
//
// Log records use dotted event names (tool.call.start, flow.model.request,
// agent.run.finish) followed by key/value attributes.
package logging
