package agent

import "github.com/hupe1980/agentkit/core"

// Result is the outcome of a completed run.
type Result struct {
	// Output is the text of the final assistant message.
	Output string

	// Usage accumulates every model request of the run.
	Usage core.Usage

	history     []core.Message
	newMessages []core.Message
}

func newResult(history, newMessages []core.Message, usage core.Usage) *Result {
	r := &Result{
		Usage:       usage,
		history:     core.CloneHistory(history),
		newMessages: newMessages,
	}

	for i := len(newMessages) - 1; i >= 0; i-- {
		if newMessages[i].Role() == core.RoleAssistant {
			r.Output = newMessages[i].Text()
			break
		}
	}

	return r
}

// NewMessages returns the messages produced by this run, starting with the
// user prompt.
func (r *Result) NewMessages() []core.Message { return core.CloneHistory(r.newMessages) }

// AllMessages returns the supplied history followed by NewMessages.
func (r *Result) AllMessages() []core.Message {
	all := make([]core.Message, 0, len(r.history)+len(r.newMessages))
	all = append(all, r.history...)
	return append(all, r.newMessages...)
}
