// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation history (messages, sessions,
// function call/response parts). They are not intended for production usage.
package testutil
