// Package supervisor delegates prompts to specialised sub-agents.
//
// Two styles are supported. A Router classifies the prompt into an Intent
// and dispatches through an explicit table of Routes, falling back to a
// default route for unknown intents. Alternatively New builds a free-text
// supervisor: an agent whose tools are the same routes, letting the model
// choose by reading its instructions.
//
// The routes mirror the classic three-way split: PDF extraction (optionally
// chained into a test generator), coding with an executing reviewer, and web
// search.
package supervisor
