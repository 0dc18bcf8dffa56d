// Package runner keeps conversations alive across runs.
//
// A Runner binds one agent to a core.SessionStore. Each Run loads the
// session's history, runs the agent with it and appends the new messages,
// so a dialogue continues where the previous run stopped. Runs of the same
// session are serialised; a second concurrent run is rejected and an active
// run can be cancelled by session id.
package runner
