// Package deps declares the dependency types agents receive per run. Each
// agent is parameterized by exactly one of them (or struct{} when it needs
// none), and tools that read deps are bound to the same type.
package deps

// BirthYear is the user's year of birth.
type BirthYear int

// FilePath is the path of the single text file a file agent reads or writes.
type FilePath string

// AnswerFiles points an evaluator at the two answer sheets to compare.
type AnswerFiles struct {
	ModelPath   string
	StudentPath string
}

// ChainTests asks the PDF route to turn extracted text into a test.
type ChainTests bool

// None is the dependency type of agents that need no deps.
type None = struct{}
