package supervisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/code"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tools/codeexec"
)

func TestNewTeam(t *testing.T) {
	models := map[string]*model.MockModel{}
	factory := func(name string, optFns ...func(o *agent.Options)) (*agent.Agent[deps.None], error) {
		m := model.NewMockModel(name, "mock")
		models[name] = m
		return agent.New[deps.None](name, m, append(optFns, func(o *agent.Options) { o.RetryBackoff = 0 })...)
	}

	var ran string
	fakePython := code.ExecutorFunc(func(_ context.Context, src string) (string, error) {
		ran = src
		return "3\n", nil
	})

	team, err := NewTeam(factory, func(o *TeamOptions) {
		o.PDFPath = "course.pdf"
		o.CodeTool = codeexec.New(fakePython, 0)
	})
	require.NoError(t, err)
	assert.Len(t, models, 6)
	assert.Len(t, team.Table(), 4)
	assert.Equal(t, []string{PDFRouteName, CoderRouteName, WebSearchRouteName}, []string{
		team.Routes()[0].Name, team.Routes()[1].Name, team.Routes()[2].Name,
	})

	models["coder"].Enqueue(model.TextStep("```python\nprint(1+2)\n```"))
	models["code_executor"].Enqueue(
		model.ToolCallStep(core.FunctionCall{Name: "execute_code", Arguments: `{"code":"print(1+2)"}`}),
		model.TextStep("The code prints 3."),
	)

	r, err := NewRouter(NewKeywordClassifier(), team.Table(), func(o *RouterOptions) { o.Default = IntentGeneral })
	require.NoError(t, err)

	out, err := r.Dispatch(context.Background(), Request{Prompt: "Solve the student task: add 1 and 2"})
	require.NoError(t, err)
	assert.Equal(t, IntentCode, out.Intent)
	assert.Contains(t, out.Output, "The code prints 3.")
	assert.Equal(t, "print(1+2)", ran)
	assert.Equal(t, CoderInstructions, models["coder"].Requests()[0].Instructions)
}
