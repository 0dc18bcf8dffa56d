// Package ollama provides an implementation of model.Model on top of the
// native Ollama chat API (github.com/ollama/ollama/api), including tool calls
// and streaming.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// DefaultHost is used when neither Options.Host nor OLLAMA_HOST is set.
const DefaultHost = "http://localhost:11434"

// Options configure the Ollama model adapter.
type Options struct {
	Model       string
	Host        string
	Temperature float64
	NumPredict  int
	Timeout     time.Duration
}

// Model wraps the Ollama chat endpoint behind the generic model.Model interface.
type Model struct {
	client *api.Client
	opts   Options
}

// NewModel creates a model talking to Options.Host (falling back to OLLAMA_HOST).
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:   "qwen3:8b",
		Host:    os.Getenv("OLLAMA_HOST"),
		Timeout: 5 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}

	u, err := url.Parse(opts.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", opts.Host, err)
	}

	client := api.NewClient(u, &http.Client{Timeout: opts.Timeout})

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a model from an existing client.
func NewModelFromClient(client *api.Client, optFns ...func(o *Options)) *Model {
	opts := Options{Model: "qwen3:8b"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		chatReq, err := m.buildRequest(req)
		if err != nil {
			errCh <- err
			return
		}

		var (
			text  strings.Builder
			calls []core.FunctionCall
			last  api.ChatResponse
		)

		err = m.client.Chat(ctx, chatReq, func(cr api.ChatResponse) error {
			last = cr
			if cr.Message.Content != "" {
				text.WriteString(cr.Message.Content)
				if req.Stream {
					out <- model.Response{
						Partial: true,
						Content: core.NewTextContent(core.RoleAssistant, cr.Message.Content),
					}
				}
			}
			for _, tc := range cr.Message.ToolCalls {
				fc, err := convertToolCall(tc)
				if err != nil {
					return err
				}
				calls = append(calls, fc)
			}
			return nil
		})
		if err != nil {
			errCh <- fmt.Errorf("ollama api error: %w", err)
			return
		}

		parts := make([]core.Part, 0, len(calls)+1)
		if text.Len() > 0 {
			parts = append(parts, core.TextPart{Text: text.String()})
		}
		for _, c := range calls {
			parts = append(parts, core.FunctionCallPart{FunctionCall: c})
		}

		finish := last.DoneReason
		if len(calls) > 0 {
			finish = "tool_calls"
		}

		out <- model.Response{
			Partial:      false,
			Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
			FinishReason: finish,
			Usage: &model.TokenUsage{
				PromptTokens:     last.PromptEvalCount,
				CompletionTokens: last.EvalCount,
				TotalTokens:      last.PromptEvalCount + last.EvalCount,
			},
		}
	}()

	return out, errCh
}

func (m *Model) buildRequest(req model.Request) (*api.ChatRequest, error) {
	msgs, err := buildMessages(req)
	if err != nil {
		return nil, err
	}

	tools, err := buildTools(req.Tools)
	if err != nil {
		return nil, err
	}

	temperature := m.opts.Temperature
	if req.Settings.Temperature != nil {
		temperature = *req.Settings.Temperature
	}

	options := map[string]any{"temperature": temperature}
	if req.Settings.MaxTokens > 0 {
		options["num_predict"] = req.Settings.MaxTokens
	} else if m.opts.NumPredict > 0 {
		options["num_predict"] = m.opts.NumPredict
	}

	stream := req.Stream

	return &api.ChatRequest{
		Model:    m.opts.Model,
		Messages: msgs,
		Tools:    tools,
		Stream:   &stream,
		Options:  options,
	}, nil
}

func buildMessages(req model.Request) ([]api.Message, error) {
	var msgs []api.Message
	if req.Instructions != "" {
		msgs = append(msgs, api.Message{Role: core.RoleSystem, Content: req.Instructions})
	}
	for _, c := range req.Contents {
		switch c.Role {
		case core.RoleTool:
			for _, p := range c.Parts {
				if fr, ok := p.(core.FunctionResponsePart); ok {
					msgs = append(msgs, api.Message{Role: "tool", Content: model.FunctionResponseText(fr.FunctionResponse)})
				}
			}
		case core.RoleAssistant:
			msg := api.Message{Role: core.RoleAssistant, Content: c.Text()}
			for _, p := range c.Parts {
				fc, ok := p.(core.FunctionCallPart)
				if !ok {
					continue
				}
				tc, err := toAPIToolCall(fc.FunctionCall)
				if err != nil {
					return nil, err
				}
				msg.ToolCalls = append(msg.ToolCalls, tc)
			}
			msgs = append(msgs, msg)
		case core.RoleSystem:
			msgs = append(msgs, api.Message{Role: core.RoleSystem, Content: c.Text()})
		default:
			msgs = append(msgs, api.Message{Role: core.RoleUser, Content: c.Text()})
		}
	}
	return msgs, nil
}

// buildTools converts tool definitions through their JSON form, which the
// Ollama API types mirror.
func buildTools(defs []model.ToolDefinition) (api.Tools, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("marshal tools: %w", err)
	}
	var tools api.Tools
	if err := json.Unmarshal(b, &tools); err != nil {
		return nil, fmt.Errorf("convert tools: %w", err)
	}
	return tools, nil
}

type wireToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

func toAPIToolCall(fc core.FunctionCall) (api.ToolCall, error) {
	var w wireToolCall
	w.Function.Name = fc.Name
	args, err := model.ParseArguments(fc.Arguments)
	if err != nil {
		return api.ToolCall{}, err
	}
	w.Function.Arguments = args

	b, err := json.Marshal(w)
	if err != nil {
		return api.ToolCall{}, err
	}
	var tc api.ToolCall
	if err := json.Unmarshal(b, &tc); err != nil {
		return api.ToolCall{}, err
	}
	return tc, nil
}

func convertToolCall(tc api.ToolCall) (core.FunctionCall, error) {
	args, err := json.Marshal(tc.Function.Arguments)
	if err != nil {
		return core.FunctionCall{}, fmt.Errorf("marshal tool arguments: %w", err)
	}
	return core.FunctionCall{
		ID:        core.NewID(),
		Name:      tc.Function.Name,
		Arguments: string(args),
	}, nil
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "ollama",
		SupportsTools: true,
	}
}
