// Package fileio provides tools that read and write whole text files whose
// location comes from the run's deps rather than from the model. Storage goes
// through an artifact.Store.
package fileio

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/tool"
)

// TimestampLayout formats the timestamp appended to student answers.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// WriteArgs carry the text to store.
type WriteArgs struct {
	Text string `json:"text" description:"full text to write"`
}

// NoArgs is the input of tools that take no arguments.
type NoArgs struct{}

// Read returns the read_file tool reading the file at deps.FilePath.
func Read(store artifact.Store) tool.Tool {
	return tool.NewDepsTool("read_file", "Reads the text file whose path is provided via deps.",
		func(tc *core.ToolContext, path deps.FilePath, _ NoArgs) (string, error) {
			return artifact.GetText(tc.Context(), store, string(path))
		})
}

// Write returns the write_file tool overwriting the file at deps.FilePath.
func Write(store artifact.Store) tool.Tool {
	return tool.NewDepsTool("write_file", "Writes text to the file whose path is provided via deps.",
		func(tc *core.ToolContext, path deps.FilePath, in WriteArgs) (string, error) {
			if err := artifact.SaveText(tc.Context(), store, string(path), in.Text); err != nil {
				return "", err
			}
			return generated(string(path)), nil
		})
}

// WriteAnswers returns the write_answers tool. Paths containing
// "model_answer" receive the text unchanged; any other path receives
// "Student Answers:\n{text}\nTimestamp: {now}".
func WriteAnswers(store artifact.Store) tool.Tool { return WriteAnswersFunc(store, time.Now) }

// WriteAnswersFunc is WriteAnswers with an injectable clock.
func WriteAnswersFunc(store artifact.Store, now func() time.Time) tool.Tool {
	return tool.NewDepsTool("write_answers", "Submits answers by writing them to the file whose path is provided via deps.",
		func(tc *core.ToolContext, path deps.FilePath, in WriteArgs) (string, error) {
			if err := artifact.SaveText(tc.Context(), store, string(path), FormatAnswers(string(path), in.Text, now())); err != nil {
				return "", err
			}
			return generated(string(path)), nil
		})
}

// FormatAnswers renders the stored answer sheet for path.
func FormatAnswers(path, text string, now time.Time) string {
	if IsModelAnswers(path) {
		return text
	}
	return fmt.Sprintf("Student Answers:\n%s\nTimestamp: %s", text, now.Format(TimestampLayout))
}

// IsModelAnswers reports whether path names a model answer sheet.
func IsModelAnswers(path string) bool {
	return strings.Contains(path, "model_answer")
}

// Answers are both answer sheets of one evaluation.
type Answers struct {
	ModelAnswers   string `json:"model_answers"`
	StudentAnswers string `json:"student_answers"`
}

// ReadAnswers returns the read_answers tool loading both files named by
// deps.AnswerFiles.
func ReadAnswers(store artifact.Store) tool.Tool {
	return tool.NewDepsTool("read_answers", "Reads the model answers and the student answers provided via deps.",
		func(tc *core.ToolContext, files deps.AnswerFiles, _ NoArgs) (Answers, error) {
			modelAnswers, err := artifact.GetText(tc.Context(), store, files.ModelPath)
			if err != nil {
				return Answers{}, err
			}
			studentAnswers, err := artifact.GetText(tc.Context(), store, files.StudentPath)
			if err != nil {
				return Answers{}, err
			}
			return Answers{ModelAnswers: modelAnswers, StudentAnswers: studentAnswers}, nil
		})
}

// Toolset bundles read_file and write_file.
func Toolset(store artifact.Store) *tool.Toolset {
	return tool.NewToolset("fileio", Read(store), Write(store))
}

func generated(path string) string {
	return "File generated successfully at path: " + path
}
