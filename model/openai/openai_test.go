package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

func collect(respCh <-chan model.Response, errCh <-chan error) ([]model.Response, error) {
	var out []model.Response
	for r := range respCh {
		out = append(out, r)
	}
	return out, <-errCh
}

func TestGenerateNonStreamingToolCall(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"qwen3:8b",
			"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
				"tool_calls":[{"id":"call_1","type":"function","function":{"name":"add_numbers","arguments":"{\"a\":1,\"b\":2}"}}]}}],
			"usage":{"prompt_tokens":12,"completion_tokens":8,"total_tokens":20}}`)
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) { o.BaseURL = srv.URL })

	resps, err := collect(m.Generate(context.Background(), model.Request{
		Instructions: "You are a calculator.",
		Contents:     []core.Content{core.NewTextContent(core.RoleUser, "1+2?")},
		Tools: []model.ToolDefinition{{Type: "function", Function: model.FunctionDefinition{
			Name:        "add_numbers",
			Description: "Add two numbers",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		}}},
	}))
	require.NoError(t, err)
	require.Len(t, resps, 1)

	calls := core.Message{Content: resps[0].Content}.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "add_numbers", calls[0].Name)
	assert.JSONEq(t, `{"a":1,"b":2}`, calls[0].Arguments)
	assert.Equal(t, 20, resps[0].Usage.TotalTokens)

	assert.Equal(t, "qwen3:8b", got["model"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Len(t, got["tools"], 1)
}

func TestGenerateStreamingText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":"stop"}]}`,
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`,
		}
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) { o.BaseURL = srv.URL })

	resps, err := collect(m.Generate(context.Background(), model.Request{
		Contents: []core.Content{core.NewTextContent(core.RoleUser, "hi")},
		Stream:   true,
	}))
	require.NoError(t, err)
	require.Len(t, resps, 3)
	assert.True(t, resps[0].Partial)
	assert.Equal(t, "Hel", resps[0].Content.Text())
	assert.False(t, resps[2].Partial)
	assert.Equal(t, "Hello", resps[2].Content.Text())
	assert.Equal(t, "stop", resps[2].FinishReason)
	require.NotNil(t, resps[2].Usage)
	assert.Equal(t, 5, resps[2].Usage.TotalTokens)
}

func TestBuildMessagesExpandsToolResponses(t *testing.T) {
	msgs := buildMessages(model.Request{Contents: []core.Content{
		core.NewTextContent(core.RoleUser, "time and sum?"),
		{Role: core.RoleAssistant, Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "a", Name: "get_current_time"}},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "b", Name: "add_numbers", Arguments: `{"a":1,"b":2}`}},
		}},
		{Role: core.RoleTool, Parts: []core.Part{
			core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "a", Response: "10:00"}},
			core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "b", Response: 3.0}},
		}},
	}})
	require.Len(t, msgs, 4)
	require.NotNil(t, msgs[1].OfAssistant)
	assert.Len(t, msgs[1].OfAssistant.ToolCalls, 2)
	assert.Equal(t, "{}", msgs[1].OfAssistant.ToolCalls[0].Function.Arguments)
	require.NotNil(t, msgs[2].OfTool)
	assert.Equal(t, "a", msgs[2].OfTool.ToolCallID)
	assert.Equal(t, "b", msgs[3].OfTool.ToolCallID)
}
