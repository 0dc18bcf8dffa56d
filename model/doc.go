// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language models inside agentkit.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (openai, ollama, anthropic) implement the Model interface from
// this package so higher layers (agents, flows) remain decoupled from vendor
// SDKs. The openai provider also drives any OpenAI-compatible server such as
// a local Ollama at http://localhost:11434/v1.
package model
