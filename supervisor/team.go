package supervisor

import (
	"fmt"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/tool"
	"github.com/hupe1980/agentkit/tools/codeexec"
	"github.com/hupe1980/agentkit/tools/pdf"
	"github.com/hupe1980/agentkit/tools/websearch"
)

// Sub-agent instructions.
const (
	PDFExtractorInstructions = "Use the tool get_pdf_text(path, max_chars) to read the PDF. " +
		"Your job is to return the PDF text only with no additional explanation."
	TestGeneratorInstructions = "You are an examiner agent. " +
		"You generate a test of 5 multiple choice questions on the content you receive. " +
		"Do not provide answers as it is supposed to be a test."
	CoderInstructions    = "You are a coding assistant. Solve Python programming tasks."
	ExecutorInstructions = "You are an examiner that checks Python code. " +
		"Call execute_code to run the code and check that its output is reasonable. " +
		"Do not change anything in the code given to you."
	WebSearcherInstructions = "You are a web search assistant. " +
		"Use the web_search tool to fetch and summarize internet results."
	GeneralInstructions = "You are a helpful assistant. Be concise."
)

// AgentFactory builds a dependency-free agent named name.
type AgentFactory func(name string, optFns ...func(o *agent.Options)) (*agent.Agent[deps.None], error)

// TeamOptions configure NewTeam.
type TeamOptions struct {
	// PDFPath is the document served by the PDF route.
	PDFPath  string
	Store    artifact.Store
	Searcher *websearch.Searcher
	// CodeTool runs the coder's code; defaults to python3 in a subprocess.
	CodeTool tool.Tool
}

// Team holds the routes backed by the standard sub-agents.
type Team struct {
	PDF       Route
	Coder     Route
	WebSearch Route
	General   Route
}

// NewTeam builds pdf_extractor, test_generator, coder, code_executor,
// web_searcher and assistant through factory and wires them into routes.
func NewTeam(factory AgentFactory, optFns ...func(o *TeamOptions)) (*Team, error) {
	opts := TeamOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Searcher == nil {
		opts.Searcher = websearch.New()
	}
	if opts.CodeTool == nil {
		opts.CodeTool = codeexec.NewPython()
	}

	build := func(name, instructions string, tools ...tool.Tool) (*agent.Agent[deps.None], error) {
		a, err := factory(name, func(o *agent.Options) {
			o.Instruction = agent.NewInstructionFromText(instructions)
			o.Tools = append(o.Tools, tools...)
		})
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		return a, nil
	}

	extractor, err := build("pdf_extractor", PDFExtractorInstructions, pdf.NewExtractor(opts.Store).Tool())
	if err != nil {
		return nil, err
	}
	testGenerator, err := build("test_generator", TestGeneratorInstructions)
	if err != nil {
		return nil, err
	}
	coder, err := build("coder", CoderInstructions)
	if err != nil {
		return nil, err
	}
	executor, err := build("code_executor", ExecutorInstructions, opts.CodeTool)
	if err != nil {
		return nil, err
	}
	searcher, err := build("web_searcher", WebSearcherInstructions, opts.Searcher.Tool())
	if err != nil {
		return nil, err
	}
	general, err := build("assistant", GeneralInstructions)
	if err != nil {
		return nil, err
	}

	return &Team{
		PDF:       PDFRoute(extractor, testGenerator, opts.PDFPath),
		Coder:     CoderRoute(coder, executor),
		WebSearch: WebSearchRoute(searcher),
		General:   AgentRoute(string(IntentGeneral), general),
	}, nil
}

// Routes returns the delegation routes offered to a free-text supervisor.
func (t *Team) Routes() []Route { return []Route{t.PDF, t.Coder, t.WebSearch} }

// Table returns the routing table for a Router.
func (t *Team) Table() map[Intent]Route {
	return map[Intent]Route{
		IntentPDF:       t.PDF,
		IntentCode:      t.Coder,
		IntentWebSearch: t.WebSearch,
		IntentGeneral:   t.General,
	}
}
