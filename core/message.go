package core

import (
	"time"

	"github.com/google/uuid"
)

// Message is one record of a conversation: a prompt, a model reply, a batch of
// tool results or a streamed fragment. Once appended to a history it should be
// treated as immutable.
type Message struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	Author    string    `json:"author"`
	Content   Content   `json:"content"`
	Partial   bool      `json:"partial,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Usage     *Usage    `json:"usage,omitempty"`
}

// NewMessage creates a message authored by author with the given content.
func NewMessage(runID, author string, content Content) Message {
	return Message{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(runID, text string) Message {
	return NewMessage(runID, RoleUser, NewTextContent(RoleUser, text))
}

// NewSystemMessage creates a system prompt message.
func NewSystemMessage(runID, text string) Message {
	return NewMessage(runID, RoleSystem, NewTextContent(RoleSystem, text))
}

// NewAssistantMessage creates an assistant text message authored by an agent.
func NewAssistantMessage(runID, author, text string) Message {
	return NewMessage(runID, author, NewTextContent(RoleAssistant, text))
}

// NewFunctionResponseMessage records the results of one batch of tool calls,
// in the order the calls were issued.
func NewFunctionResponseMessage(runID, author string, responses []FunctionResponse) Message {
	parts := make([]Part, 0, len(responses))
	for _, fr := range responses {
		parts = append(parts, FunctionResponsePart{FunctionResponse: fr})
	}
	return NewMessage(runID, author, Content{Role: RoleTool, Parts: parts})
}

// NewID generates a new unique identifier for messages and tool calls.
func NewID() string { return uuid.NewString() }

// Role returns the content role.
func (m Message) Role() string { return m.Content.Role }

// Text returns the concatenated text parts.
func (m Message) Text() string { return m.Content.Text() }

// FunctionCalls returns any FunctionCall parts preserving their original order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any FunctionResponse parts preserving their original order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse reports whether the message completes an assistant turn:
// no pending tool calls or responses and not a streamed fragment.
func (m Message) IsFinalResponse() bool {
	return m.Content.Role == RoleAssistant &&
		!m.Partial &&
		len(m.FunctionCalls()) == 0 &&
		len(m.FunctionResponses()) == 0
}

// CloneHistory returns a copy of h that can be appended to without aliasing
// the caller's backing array.
func CloneHistory(h []Message) []Message {
	out := make([]Message, len(h))
	copy(out, h)
	return out
}

// ConversationHistory filters h to messages suitable for replay to a model:
// partial fragments and system prompts are dropped.
func ConversationHistory(h []Message) []Message {
	out := make([]Message, 0, len(h))
	for _, m := range h {
		if m.Partial || m.Content.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
