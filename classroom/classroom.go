// Package classroom simulates an exam: student agents answer a generated
// test with a random number of deliberate mistakes, a solver writes the
// model answers and an evaluator grades every submitted sheet.
//
// Answer sheets are plain text artifacts handed between agents by path.
package classroom

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/evaluation"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tools/fileio"
)

const (
	DefaultStudents    = 3
	DefaultMaxMistakes = 5
	ModelAnswersFile   = "model_answers.txt"

	StudentPrompt = "Start with: Student %d\nAnswer the test and submit the answers. " +
		"Make %d random mistake(s) in the test but don't mention which ones, stop once submitted"
	SolverPrompt = "Answer the test and submit the answers, stop once submitted"
)

// Instructions of the built-in agents.
const (
	ExaminerInstructions = `You are an examiner agent. Be concise.
You will get a test and a student will answer it.
When asked to submit the answers, call the tool write_answers with the student answers.`

	SolverInstructions = `You are a solver agent. Be concise.
You solve tests given to you. When you have solved the test, call the tool write_answers with your answers.
The title before your answers must be 'Model Answers'.`
)

// Options configure an Orchestrator.
type Options struct {
	// Students is the number of simulated students.
	Students int
	// MaxMistakes bounds the random mistakes per student (inclusive);
	// negative values mean none.
	MaxMistakes int
	// Dir is prepended to the answer sheet names.
	Dir string
	// Mistakes picks the mistake count for student i; defaults to a uniform
	// draw from [0, MaxMistakes].
	Mistakes func(student int) int
	Logger   logging.Logger
}

// Orchestrator runs one exam.
type Orchestrator struct {
	examiner  *agent.Agent[deps.FilePath]
	solver    *agent.Agent[deps.FilePath]
	evaluator evaluation.Evaluator
	store     artifact.Store
	opts      Options
}

// New creates an Orchestrator. store must be the store the agents' tools
// write to.
func New(examiner, solver *agent.Agent[deps.FilePath], evaluator evaluation.Evaluator, store artifact.Store, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Students:    DefaultStudents,
		MaxMistakes: DefaultMaxMistakes,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxMistakes < 0 {
		opts.MaxMistakes = 0
	}
	if opts.Students < 0 {
		opts.Students = 0
	}
	if opts.Mistakes == nil {
		maxMistakes := opts.MaxMistakes
		opts.Mistakes = func(int) int { return rand.IntN(maxMistakes + 1) }
	}

	return &Orchestrator{
		examiner:  examiner,
		solver:    solver,
		evaluator: evaluator,
		store:     store,
		opts:      opts,
	}
}

// NewExaminer builds the student-facing examiner agent.
func NewExaminer(llm model.Model, store artifact.Store, optFns ...func(o *agent.Options)) (*agent.Agent[deps.FilePath], error) {
	return newWriter("examiner", ExaminerInstructions, llm, store, optFns)
}

// NewSolver builds the agent writing the model answers.
func NewSolver(llm model.Model, store artifact.Store, optFns ...func(o *agent.Options)) (*agent.Agent[deps.FilePath], error) {
	return newWriter("solver", SolverInstructions, llm, store, optFns)
}

func newWriter(name, instructions string, llm model.Model, store artifact.Store, optFns []func(o *agent.Options)) (*agent.Agent[deps.FilePath], error) {
	fns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromText(instructions)
		o.Tools = append(o.Tools, fileio.WriteAnswers(store))
	}}, optFns...)

	return agent.New[deps.FilePath](name, llm, fns...)
}

// StudentResult is the outcome for one student.
type StudentResult struct {
	Index    int
	Path     string
	Mistakes int
	// Output is the examiner's reply to the student run.
	Output string
	// Err is set when the student run failed.
	Err error
	// Missing lists the absent answer sheets; the student was not graded.
	Missing    []string
	Evaluation *evaluation.Report
}

// Line renders the result the way the exam log prints it.
func (s StudentResult) Line() string {
	switch {
	case len(s.Missing) > 0:
		return fmt.Sprintf("[Student%d] Skipped (missing: %s)", s.Index, strings.Join(s.Missing, ", "))
	case s.Evaluation != nil:
		return fmt.Sprintf("[Student%d] -> %s", s.Index, s.Evaluation.Output())
	case s.Err != nil:
		return fmt.Sprintf("[Student%d] Failed: %v", s.Index, s.Err)
	default:
		return fmt.Sprintf("[Student%d] Not evaluated", s.Index)
	}
}

// Report collects one exam.
type Report struct {
	ModelAnswersPath string
	SolverOutput     string
	SolverErr        error
	Students         []StudentResult
	Usage            core.Usage
}

// String renders one line per student.
func (r *Report) String() string {
	lines := make([]string, 0, len(r.Students))
	for _, s := range r.Students {
		lines = append(lines, s.Line())
	}
	return strings.Join(lines, "\n")
}

// Run holds the exam for test, the conversation in which the test was
// generated. Agent failures are recorded per student; only cancellation
// aborts the exam.
func (o *Orchestrator) Run(ctx context.Context, test []core.Message) (*Report, error) {
	logger := o.opts.Logger
	report := &Report{ModelAnswersPath: filepath.Join(o.opts.Dir, ModelAnswersFile)}

	for i := 1; i <= o.opts.Students; i++ {
		sr := StudentResult{
			Index:    i,
			Path:     filepath.Join(o.opts.Dir, fmt.Sprintf("Student%d.txt", i)),
			Mistakes: o.opts.Mistakes(i),
		}

		res, err := o.examiner.Run(ctx, fmt.Sprintf(StudentPrompt, i, sr.Mistakes), deps.FilePath(sr.Path), agent.WithHistory(test))
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("classroom.student.failed", "student", i, "error", err.Error())
			sr.Err = err
		} else {
			report.Usage.Add(res.Usage)
			sr.Output = res.Output
			logger.Info("classroom.student.submitted", "student", i, "path", sr.Path, "mistakes", sr.Mistakes)
		}

		report.Students = append(report.Students, sr)
	}

	res, err := o.solver.Run(ctx, SolverPrompt, deps.FilePath(report.ModelAnswersPath), agent.WithHistory(test))
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		logger.Warn("classroom.solver.failed", "error", err.Error())
		report.SolverErr = err
	} else {
		report.Usage.Add(res.Usage)
		report.SolverOutput = res.Output
	}

	for i := range report.Students {
		sr := &report.Students[i]

		missing, err := artifact.Missing(ctx, o.store, report.ModelAnswersPath, sr.Path)
		if err != nil {
			return report, err
		}

		if len(missing) > 0 {
			for j, m := range missing {
				missing[j] = filepath.Base(m)
			}
			sr.Missing = missing
			logger.Warn("classroom.student.skipped", "student", sr.Index, "missing", strings.Join(missing, ", "))
			continue
		}

		rep, err := o.evaluator.Evaluate(ctx, deps.AnswerFiles{ModelPath: report.ModelAnswersPath, StudentPath: sr.Path})
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("classroom.evaluation.failed", "student", sr.Index, "error", err.Error())
			sr.Err = err
			continue
		}

		report.Usage.Add(rep.Usage)
		sr.Evaluation = rep
	}

	return report, nil
}
