// Package agent contains the model-centric tool-calling agent and the
// utilities built on top of it. The package focuses on three concerns:
//
//  1. Agent[D]: binds a model, instructions, toolsets and a typed dependency
//     value D and runs the tool-call loop to a final text answer
//  2. Composition: AsTool wraps an agent as a tool for another agent; Chain
//     runs agents in sequence passing conversation history along
//  3. Streaming: RunStream forwards text deltas while the run progresses
//
// Execution Model:
//   - Every Run creates a fresh *core.RunContext carrying the deps value
//   - The agent delegates the request/tool loop to a flow.SingleAgentFlow
//   - History is owned by the caller: pass Result.NewMessages() or
//     Result.AllMessages() back via WithHistory to continue a conversation
//
// Dependency types are checked when tools are registered: a tool built with
// tool.NewDepsTool[X] can only be attached to an Agent[X].
package agent
