// Package tools groups the ready-made tools agents can register. Each
// subpackage builds tool.Tool values with the tool package constructors:
//
//   - clock: current local time
//   - arith: addition, age and birth-year lookups
//   - fileio: text files addressed by the run's deps
//   - calculator: restricted arithmetic expressions
//   - codeexec: code execution with bounded retries
//   - websearch: DuckDuckGo HTML search
//   - pdf: PDF text extraction
package tools
