package testutil

import (
	"github.com/hupe1980/agentkit/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Author("agent").Run("run-1").AssistantText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	author        string
	runID         string
	id            string
	role          string
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
	partial       bool
	usage         *core.Usage
}

// NewMessageBuilder creates a builder with default author "agent".
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{author: "agent"} }

// Author sets the author name (chainable).
func (b *MessageBuilder) Author(a string) *MessageBuilder { b.author = a; return b }

// Run sets the run ID (chainable).
func (b *MessageBuilder) Run(id string) *MessageBuilder { b.runID = id; return b }

// ID overrides the generated message ID (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Partial marks the message as a streaming fragment (chainable).
func (b *MessageBuilder) Partial() *MessageBuilder { b.partial = true; return b }

// Usage attaches token usage (chainable).
func (b *MessageBuilder) Usage(u core.Usage) *MessageBuilder { b.usage = &u; return b }

// UserText appends a text part and sets role to user (chainable).
func (b *MessageBuilder) UserText(t string) *MessageBuilder {
	b.role = core.RoleUser
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends a text part and sets role to assistant (chainable).
func (b *MessageBuilder) AssistantText(t string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.textParts = append(b.textParts, t)
	return b
}

// SystemText appends a text part and sets role to system (chainable).
func (b *MessageBuilder) SystemText(t string) *MessageBuilder {
	b.role = core.RoleSystem
	b.textParts = append(b.textParts, t)
	return b
}

// FunctionCall adds a function call part and sets role to assistant (chainable).
func (b *MessageBuilder) FunctionCall(id, name, args string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// FunctionResponse adds a function response part and sets role to tool (chainable).
func (b *MessageBuilder) FunctionResponse(id, name string, result any, err error) *MessageBuilder {
	b.role = core.RoleTool
	fr := core.FunctionResponse{ID: id, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	b.funcResponses = append(b.funcResponses, fr)
	return b
}

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	parts := make([]core.Part, 0, len(b.textParts)+len(b.funcCalls)+len(b.funcResponses))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}

	role := b.role
	if role == "" {
		role = core.RoleAssistant
	}

	msg := core.NewMessage(b.runID, b.author, core.Content{Role: role, Parts: parts})
	if b.id != "" {
		msg.ID = b.id
	}
	msg.Partial = b.partial
	msg.Usage = b.usage

	return msg
}

// Conversation builds alternating user/assistant text messages from pairs of
// prompt and answer.
func Conversation(pairs ...string) []core.Message {
	out := make([]core.Message, 0, len(pairs))
	for i, t := range pairs {
		if i%2 == 0 {
			out = append(out, NewMessageBuilder().Author("user").UserText(t).Build())
		} else {
			out = append(out, NewMessageBuilder().AssistantText(t).Build())
		}
	}
	return out
}
