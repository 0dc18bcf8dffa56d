package testutil

import (
	"github.com/hupe1980/agentkit/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").Meta("k", "v").Messages(m1, m2).Build()
type SessionBuilder struct {
	id       string
	meta     map[string]string
	messages []core.Message
}

// NewSessionBuilder creates a new builder for a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, meta: map[string]string{}}
}

// Meta sets or overwrites a metadata key/value pair (chainable).
func (b *SessionBuilder) Meta(key, val string) *SessionBuilder {
	b.meta[key] = val
	return b
}

// Messages appends messages to the session history (chainable).
func (b *SessionBuilder) Messages(msgs ...core.Message) *SessionBuilder {
	b.messages = append(b.messages, msgs...)
	return b
}

// Build returns a *core.Session with pre-populated metadata and history.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)

	for k, v := range b.meta {
		s.Metadata[k] = v
	}

	s.Append(b.messages...)

	return s
}
