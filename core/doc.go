// Package core provides the foundational domain types and execution contexts
// used by agentkit. It defines:
//
//   - Parts and Content (role based, ordered message payloads)
//   - Messages (conversation history records produced by a run)
//   - RunContext / ToolContext (scoped execution state, typed dependencies)
//   - Sessions (conversation containers that outlive a single run)
//   - ModelLimiter and Usage (per run accounting)
//
// Implementation concerns (model providers, tool execution, persistence) live
// in sibling packages and depend on core, never the other way around.
package core
