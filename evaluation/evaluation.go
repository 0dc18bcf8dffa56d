// Package evaluation grades a student's answer sheet against the model
// answers with an evaluator agent.
package evaluation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tools/fileio"
)

// Prompt asks the evaluator to grade one student.
const Prompt = "Evaluate student answers with model answers and give the student his mark"

// Instructions configure the evaluator agent.
const Instructions = `You are an evaluator agent. Be concise.
When asked to evaluate student answers, call the tool read_answers to access the student answers and the model answers.
The tool knows the file paths, just call it.
Each question is worth one mark. Give the student the final mark as "score/total" and tell them their mistakes.`

// Invocation is one evaluator exchange.
type Invocation struct {
	UserContent   core.Content
	FinalResponse core.Content
}

// Mark is a parsed "score/total" grade.
type Mark struct {
	Score int
	Total int
}

func (m Mark) String() string { return fmt.Sprintf("%d/%d", m.Score, m.Total) }

// Report is the outcome of one evaluation.
type Report struct {
	Files      deps.AnswerFiles
	Invocation Invocation
	// Mark is nil when the answer did not contain a recognisable grade.
	Mark  *Mark
	Usage core.Usage
}

// Output returns the evaluator's final text.
func (r *Report) Output() string { return r.Invocation.FinalResponse.Text() }

// Evaluator grades the answer sheets named by files.
type Evaluator interface {
	Evaluate(ctx context.Context, files deps.AnswerFiles) (*Report, error)
}

// AgentEvaluator is an Evaluator backed by an agent with the read_answers
// tool.
type AgentEvaluator struct {
	agent *agent.Agent[deps.AnswerFiles]
}

// New builds an AgentEvaluator reading the answer sheets from store.
func New(llm model.Model, store artifact.Store, optFns ...func(o *agent.Options)) (*AgentEvaluator, error) {
	fns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromText(Instructions)
		o.Tools = append(o.Tools, fileio.ReadAnswers(store))
	}}, optFns...)

	a, err := agent.New[deps.AnswerFiles]("evaluator", llm, fns...)
	if err != nil {
		return nil, err
	}

	return &AgentEvaluator{agent: a}, nil
}

// Evaluate implements Evaluator.
func (e *AgentEvaluator) Evaluate(ctx context.Context, files deps.AnswerFiles) (*Report, error) {
	res, err := e.agent.Run(ctx, Prompt, files)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", files.StudentPath, err)
	}

	return &Report{
		Files: files,
		Invocation: Invocation{
			UserContent:   core.NewTextContent(core.RoleUser, Prompt),
			FinalResponse: core.NewTextContent(core.RoleAssistant, res.Output),
		},
		Mark:  ParseMark(res.Output),
		Usage: res.Usage,
	}, nil
}

var markRe = regexp.MustCompile(`(?i)(\d+)\s*(?:/|out of|of|von)\s*(\d+)`)

// ParseMark returns the last "score/total" (or "score out of total") in
// text, or nil.
func ParseMark(text string) *Mark {
	matches := markRe.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		score, err1 := strconv.Atoi(matches[i][1])
		total, err2 := strconv.Atoi(matches[i][2])
		if err1 != nil || err2 != nil || total == 0 || score > total {
			continue
		}
		return &Mark{Score: score, Total: total}
	}
	return nil
}
