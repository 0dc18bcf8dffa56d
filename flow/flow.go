// Package flow provides the execution loop behind agent runs.
//
// A flow turns a prompt plus prior history into a model request, executes the
// tool calls the model asks for, feeds the results back and repeats until the
// model answers with plain text. Request assembly is split into pluggable
// processors so instruction rendering and history trimming stay independent.
package flow

import (
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// Flow defines the interface for agent execution flows.
type Flow interface {
	// Execute runs the flow. The message channel carries every produced
	// message (partial stream fragments included) and is closed when the run
	// ends; the error channel yields at most one error and is closed after it.
	Execute(runCtx *core.RunContext, in Input) (<-chan core.Message, <-chan error)
}

// FlowAgent defines what a flow needs from an agent.
type FlowAgent interface {
	// Name returns the agent's display name, used as message author.
	Name() string

	// Model returns the language model instance.
	Model() model.Model

	// ResolveInstructions returns the (unrendered) system prompt for the run.
	ResolveInstructions(runCtx *core.RunContext) (string, error)
}

// Input is the per run input of a flow.
type Input struct {
	// History is the conversation to continue; nil starts a new one.
	History []core.Message

	// Prompt is the new user message. It may be empty when History already
	// ends with a user message.
	Prompt string

	// Tools available to the model for this run.
	Tools []tool.Tool
}

// Config tunes a flow.
type Config struct {
	// Retries bounds model request retries and consecutive retryable tool failures.
	Retries int

	// RetryBackoff is multiplied by the attempt number between model retries.
	RetryBackoff time.Duration

	// Stream requests incremental model output.
	Stream bool

	// ToolTimeout bounds each tool call; zero disables the timeout.
	ToolTimeout time.Duration

	// MaxHistoryMessages caps replayed messages; zero keeps all.
	MaxHistoryMessages int

	// MaxHistoryTokens caps replayed history by estimated tokens; zero keeps all.
	MaxHistoryTokens int

	// TokenCounter estimates tokens for MaxHistoryTokens.
	TokenCounter TokenCounter

	// Settings override model defaults.
	Settings model.Settings
}

// DefaultConfig returns the baseline flow configuration.
func DefaultConfig() Config {
	return Config{
		Retries:      1,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// RequestState is the mutable view request processors operate on.
type RequestState struct {
	Agent    FlowAgent
	Config   Config
	Messages []core.Message

	// Pinned is the index of the current run's first message; trimming never
	// removes it or anything after it.
	Pinned int
}

// RequestProcessor processes the request before sending it to the model.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the model request.
	ProcessRequest(runCtx *core.RunContext, req *model.Request, st *RequestState) error
}
