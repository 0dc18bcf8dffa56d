// Package session houses concrete implementations of core.SessionStore.
// The interface and the Session struct live in core so that agents and the
// runner never depend on a concrete storage backend.
package session
