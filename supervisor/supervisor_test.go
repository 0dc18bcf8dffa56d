package supervisor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/flow"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

func newMock(steps ...model.Step) *model.MockModel {
	return model.NewMockModel("mock", "mock").Enqueue(steps...)
}

func subAgent(t *testing.T, name string, llm model.Model) *agent.Agent[deps.None] {
	t.Helper()
	a, err := agent.New[deps.None](name, llm)
	require.NoError(t, err)
	return a
}

func echoRoute(name string) Route {
	return Route{Name: name, Handler: func(_ context.Context, req Request) (Reply, error) {
		return Reply{Output: name + ": " + req.Prompt}, nil
	}}
}

func TestKeywordClassifier(t *testing.T) {
	all := []Intent{IntentCode, IntentGeneral, IntentPDF, IntentWebSearch}

	tests := []struct {
		prompt string
		want   Intent
	}{
		{"Use the PDF to generate a 5 question test", IntentPDF},
		{"What is the Student task in the pdf", IntentPDF},
		{"Solve the student task", IntentCode},
		{"Write Python code that prints primes", IntentCode},
		{"Search the web for resources on loops", IntentWebSearch},
		{"How are you today?", IntentGeneral},
	}

	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.prompt, all)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeywordClassifier_SkipsUnofferedIntents(t *testing.T) {
	c := NewKeywordClassifier()

	got, err := c.Classify(context.Background(), "search the pdf", []Intent{IntentWebSearch})
	require.NoError(t, err)
	assert.Equal(t, IntentWebSearch, got)
}

func TestParseLabel(t *testing.T) {
	intents := []Intent{IntentCode, IntentGeneral, IntentPDF, IntentWebSearch}

	tests := []struct {
		answer string
		want   Intent
	}{
		{"pdf", IntentPDF},
		{" Code.\n", IntentCode},
		{"<think>maybe pdf? no</think>\nweb_search", IntentWebSearch},
		{"The label is: web search", IntentWebSearch},
		{"general, or perhaps code", IntentGeneral},
	}

	for _, tt := range tests {
		got, err := ParseLabel(tt.answer, intents)
		require.NoError(t, err, tt.answer)
		assert.Equal(t, tt.want, got, tt.answer)
	}

	_, err := ParseLabel("banana", intents)
	require.ErrorIs(t, err, ErrUnknownIntent)

	_, err = ParseLabel("decode", intents)
	require.ErrorIs(t, err, ErrUnknownIntent)
}

func TestLabelPattern(t *testing.T) {
	re := labelPattern(IntentWebSearch)
	assert.Same(t, re, labelPattern(IntentWebSearch))

	for _, answer := range []string{"web_search", "web search", "a web-search please"} {
		assert.True(t, re.MatchString(answer), answer)
	}
	assert.False(t, re.MatchString("websearch"))
}

func TestModelClassifier(t *testing.T) {
	llm := newMock(model.TextStep("web_search"))

	c, err := NewModelClassifier(llm)
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "find tutorials", []Intent{IntentPDF, IntentWebSearch})
	require.NoError(t, err)
	assert.Equal(t, IntentWebSearch, got)

	req := llm.Requests()[0]
	assert.Equal(t, classifierInstruction, req.Instructions)
	assert.Equal(t, "Labels: pdf, web_search\n\nRequest: find tutorials", req.Contents[0].Text())
}

func TestRouter_Dispatch(t *testing.T) {
	r, err := NewRouter(NewKeywordClassifier(), map[Intent]Route{
		IntentPDF:     echoRoute("pdf_extractor"),
		IntentGeneral: echoRoute("general"),
	}, func(o *RouterOptions) { o.Default = IntentGeneral })
	require.NoError(t, err)

	out, err := r.Dispatch(context.Background(), Request{Prompt: "read the pdf"})
	require.NoError(t, err)
	assert.Equal(t, IntentPDF, out.Intent)
	assert.Equal(t, "pdf_extractor: read the pdf", out.Output)
	assert.False(t, out.Fallback)

	msgs := out.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role())
	assert.Equal(t, "pdf_extractor: read the pdf", msgs[1].Text())

	// code is classified but not in the table
	out, err = r.Dispatch(context.Background(), Request{Prompt: "write python code"})
	require.NoError(t, err)
	assert.Equal(t, IntentGeneral, out.Intent)
	assert.True(t, out.Fallback)
}

func TestRouter_NoRoute(t *testing.T) {
	r, err := NewRouter(NewKeywordClassifier(), map[Intent]Route{IntentPDF: echoRoute("pdf")})
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), Request{Prompt: "hello"})
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestRouter_UnknownIntentFallsBack(t *testing.T) {
	unknown := ClassifierFunc(func(context.Context, string, []Intent) (Intent, error) {
		return "", ErrUnknownIntent
	})

	r, err := NewRouter(unknown, map[Intent]Route{IntentGeneral: echoRoute("general")},
		func(o *RouterOptions) { o.Default = IntentGeneral })
	require.NoError(t, err)

	out, err := r.Dispatch(context.Background(), Request{Prompt: "?"})
	require.NoError(t, err)
	assert.True(t, out.Fallback)
}

func TestRouter_ClassifierError(t *testing.T) {
	boom := errors.New("boom")
	failing := ClassifierFunc(func(context.Context, string, []Intent) (Intent, error) { return "", boom })

	r, err := NewRouter(failing, map[Intent]Route{IntentGeneral: echoRoute("general")},
		func(o *RouterOptions) { o.Default = IntentGeneral })
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), Request{Prompt: "?"})
	require.ErrorIs(t, err, boom)
}

func TestNewRouter_Validation(t *testing.T) {
	_, err := NewRouter(nil, map[Intent]Route{IntentPDF: echoRoute("pdf")})
	require.Error(t, err)

	_, err = NewRouter(NewKeywordClassifier(), map[Intent]Route{IntentPDF: {Name: "pdf"}})
	require.Error(t, err)

	_, err = NewRouter(NewKeywordClassifier(), map[Intent]Route{IntentPDF: echoRoute("pdf")},
		func(o *RouterOptions) { o.Default = IntentGeneral })
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestPDFRoute(t *testing.T) {
	t.Run("content", func(t *testing.T) {
		extractorLLM := newMock(model.TextStep("Loops repeat code."))
		route := PDFRoute(subAgent(t, "pdf", extractorLLM), nil, "course.pdf")

		reply, err := route.Handler(context.Background(), Request{ChainTests: true})
		require.NoError(t, err)
		assert.Equal(t, "PDF Content is:\n Loops repeat code.", reply.Output)
		assert.Equal(t, "What is the content of the PDF at this path: course.pdf", extractorLLM.Requests()[0].Contents[0].Text())
	})

	t.Run("chained test", func(t *testing.T) {
		testLLM := newMock(model.TextStep("1. What is a loop?"))
		route := PDFRoute(subAgent(t, "pdf", newMock(model.TextStep("Loops repeat code."))), subAgent(t, "tests", testLLM), "course.pdf")

		reply, err := route.Handler(context.Background(), Request{ChainTests: true})
		require.NoError(t, err)
		assert.Equal(t, "Test questions are:\n1. What is a loop?\n\n end of generated test questions", reply.Output)
		assert.Equal(t, 2, reply.Usage.Requests)

		contents := testLLM.Requests()[0].Contents
		require.Len(t, contents, 3)
		assert.Equal(t, "Loops repeat code.", contents[1].Text())
		assert.Equal(t, TestPrompt, contents[2].Text())
	})
}

func TestCoderRoute(t *testing.T) {
	executorLLM := newMock(model.TextStep("It prints 3."))
	route := CoderRoute(subAgent(t, "coder", newMock(model.TextStep("print(1+2)"))), subAgent(t, "executor", executorLLM))

	reply, err := route.Handler(context.Background(), Request{Prompt: "add 1 and 2"})
	require.NoError(t, err)
	assert.Equal(t, "Coder Agent returned:\n print(1+2)\nAn executor agent was called to run the code and returned:\n It prints 3.", reply.Output)

	contents := executorLLM.Requests()[0].Contents
	require.Len(t, contents, 3)
	assert.Equal(t, "Solve the task: add 1 and 2", contents[0].Text())
	assert.Equal(t, ExecutorPrompt, contents[2].Text())
}

func TestWebSearchRoute(t *testing.T) {
	route := WebSearchRoute(subAgent(t, "searcher", newMock(model.TextStep("- Go: docs (https://go.dev)"))))

	reply, err := route.Handler(context.Background(), Request{Prompt: "golang"})
	require.NoError(t, err)
	assert.Equal(t, "Web Search Results:\n- Go: docs (https://go.dev)\nEnd of Results", reply.Output)
}

func TestSupervisor_FreeText(t *testing.T) {
	testLLM := newMock(model.TextStep("1. What is a loop?"))
	pdfRoute := PDFRoute(subAgent(t, "pdf", newMock(model.TextStep("Loops."))), subAgent(t, "tests", testLLM), "course.pdf")

	supLLM := newMock(
		model.ToolCallStep(core.FunctionCall{Name: PDFRouteName, Arguments: `{}`}),
		model.TextStep("Here is your test: 1. What is a loop?"),
	)

	sup, err := New(supLLM, []Route{pdfRoute}, func(o *agent.Options) { o.RetryBackoff = 0 })
	require.NoError(t, err)

	res, err := sup.Run(context.Background(), "Use the PDF to generate a test", deps.ChainTests(true))
	require.NoError(t, err)

	assert.Equal(t, "Here is your test: 1. What is a loop?", res.Output)
	assert.Equal(t, Instructions, supLLM.Requests()[0].Instructions)
	assert.Equal(t, "Test questions are:\n1. What is a loop?\n\n end of generated test questions",
		res.NewMessages()[2].FunctionResponses()[0].Response)
	assert.Equal(t, 4, res.Usage.Requests)
}

func TestRouteTool_NoDeadline(t *testing.T) {
	var hasDeadline bool
	route := Route{Name: CoderRouteName, Handler: func(ctx context.Context, _ Request) (Reply, error) {
		_, hasDeadline = ctx.Deadline()
		return Reply{Output: "done"}, nil
	}}

	supLLM := newMock(
		model.ToolCallStep(core.FunctionCall{Name: CoderRouteName, Arguments: `{"prompt":"solve"}`}),
		model.TextStep("ok"),
	)
	sup, err := New(supLLM, []Route{route})
	require.NoError(t, err)

	_, err = sup.Run(context.Background(), "Solve the task", deps.ChainTests(false))
	require.NoError(t, err)
	assert.False(t, hasDeadline)
}

func TestRouteTool_Errors(t *testing.T) {
	t.Run("retry from handler", func(t *testing.T) {
		route := Route{Name: CoderRouteName, Handler: func(context.Context, Request) (Reply, error) {
			return Reply{}, tool.Retry("a task is required")
		}}
		supLLM := newMock(
			model.ToolCallStep(core.FunctionCall{Name: CoderRouteName, Arguments: `{}`}),
			model.TextStep("asked again"),
		)
		sup, err := New(supLLM, []Route{route}, func(o *agent.Options) { o.RetryBackoff = 0 })
		require.NoError(t, err)

		res, err := sup.Run(context.Background(), "code", deps.ChainTests(false))
		require.NoError(t, err)
		fr := res.NewMessages()[2].FunctionResponses()[0]
		assert.True(t, fr.Retry)
		assert.Equal(t, "a task is required", fr.Error)
	})

	t.Run("delegate out of retries", func(t *testing.T) {
		route := Route{Name: CoderRouteName, Handler: func(context.Context, Request) (Reply, error) {
			cause := &flow.MaxRetriesError{Tool: "execute_code", Retries: 0, Cause: tool.Retry("try again")}
			return Reply{}, fmt.Errorf("agent code_executor: %w", cause)
		}}
		supLLM := newMock(
			model.ToolCallStep(core.FunctionCall{Name: CoderRouteName, Arguments: `{"prompt":"x"}`}),
			model.TextStep("never"),
		)
		sup, err := New(supLLM, []Route{route}, func(o *agent.Options) { o.RetryBackoff = 0 })
		require.NoError(t, err)

		_, err = sup.Run(context.Background(), "code", deps.ChainTests(false))
		require.Error(t, err)
		assert.False(t, tool.IsRetryable(err))

		var te *tool.ToolError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CoderRouteName, te.Tool)
		assert.Equal(t, tool.CodeExecution, te.Code)
		assert.Len(t, supLLM.Requests(), 1)
	})
}
