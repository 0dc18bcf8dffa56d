package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// BaseFlow is a single-agent flow implementation that runs the
// request -> model -> (optional tool loop) cycle with pluggable request
// processors.
type BaseFlow struct {
	agent             FlowAgent
	cfg               Config
	executor          FunctionExecutor
	requestProcessors []RequestProcessor
}

// NewBaseFlow creates a new basic single-agent flow.
func NewBaseFlow(agent FlowAgent, cfg Config) *BaseFlow {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	return &BaseFlow{
		agent:    agent,
		cfg:      cfg,
		executor: NewParallelFunctionExecutor(FunctionExecutorConfig{Timeout: cfg.ToolTimeout}),
	}
}

// AddRequestProcessor appends a request processor; order of registration
// defines execution order.
func (f *BaseFlow) AddRequestProcessor(processor RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, processor)
}

// SetFunctionExecutor replaces the default parallel executor.
func (f *BaseFlow) SetFunctionExecutor(executor FunctionExecutor) {
	f.executor = executor
}

// Execute launches the flow asynchronously. The message channel is closed
// when the model answers without tool calls or an unrecoverable error
// occurs; in the latter case the error is sent on the error channel first.
func (f *BaseFlow) Execute(runCtx *core.RunContext, in Input) (<-chan core.Message, <-chan error) {
	msgCh := make(chan core.Message, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(msgCh)

		if err := f.run(runCtx, in, msgCh); err != nil {
			runCtx.LogError("flow.run.error", "error", err.Error())
			errCh <- err
		}
	}()

	return msgCh, errCh
}

func (f *BaseFlow) emit(runCtx *core.RunContext, out chan<- core.Message, msg core.Message) error {
	select {
	case out <- msg:
		return nil
	case <-runCtx.Done():
		return runCtx.Err()
	}
}

func (f *BaseFlow) run(runCtx *core.RunContext, in Input, out chan<- core.Message) error {
	messages := core.CloneHistory(in.History)
	pinned := len(messages)

	if in.Prompt != "" {
		prompt := core.NewUserMessage(runCtx.RunID, in.Prompt)
		messages = append(messages, prompt)
		if err := f.emit(runCtx, out, prompt); err != nil {
			return err
		}
	} else {
		if len(messages) == 0 || messages[len(messages)-1].Role() != core.RoleUser {
			return ErrNoPrompt
		}
		pinned = len(messages) - 1
	}

	registry := make(map[string]tool.Tool, len(in.Tools))
	defs := make([]model.ToolDefinition, 0, len(in.Tools))
	for _, t := range in.Tools {
		registry[t.Name()] = t
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	retries := map[string]int{}

	for {
		if err := runCtx.Err(); err != nil {
			return err
		}

		req := &model.Request{
			Tools:    defs,
			Stream:   f.cfg.Stream,
			Settings: f.cfg.Settings,
		}
		st := &RequestState{
			Agent:    f.agent,
			Config:   f.cfg,
			Messages: messages,
			Pinned:   pinned,
		}

		for _, processor := range f.requestProcessors {
			if err := processor.ProcessRequest(runCtx, req, st); err != nil {
				return fmt.Errorf("request processor %s failed: %w", processor.Name(), err)
			}
		}

		resp, err := f.generate(runCtx, *req, out)
		if err != nil {
			return err
		}

		usage := resp.Usage.ToUsage()
		runCtx.AddUsage(usage)

		content := resp.Content
		content.Role = core.RoleAssistant
		content.Parts = append([]core.Part(nil), content.Parts...)
		for i, p := range content.Parts {
			if fc, ok := p.(core.FunctionCallPart); ok && fc.FunctionCall.ID == "" {
				fc.FunctionCall.ID = core.NewID()
				content.Parts[i] = fc
			}
		}

		reply := core.NewMessage(runCtx.RunID, f.agent.Name(), content)
		reply.Usage = &usage
		messages = append(messages, reply)
		if err := f.emit(runCtx, out, reply); err != nil {
			return err
		}

		calls := reply.FunctionCalls()
		if len(calls) == 0 {
			return nil
		}

		outcomes, err := f.executor.Execute(runCtx, f.agent.Name(), registry, calls, retries)
		if err != nil {
			return err
		}

		responses := make([]core.FunctionResponse, 0, len(outcomes))
		for _, o := range outcomes {
			name := o.Response.Name
			if o.Response.Retry {
				retries[name]++
				if retries[name] > f.cfg.Retries {
					return &MaxRetriesError{Tool: name, Retries: f.cfg.Retries, Cause: o.Cause}
				}
			} else {
				delete(retries, name)
			}
			responses = append(responses, o.Response)
		}

		toolMsg := core.NewFunctionResponseMessage(runCtx.RunID, f.agent.Name(), responses)
		messages = append(messages, toolMsg)
		if err := f.emit(runCtx, out, toolMsg); err != nil {
			return err
		}
	}
}

// generate sends one request, retrying model failures up to cfg.Retries
// times. Every attempt counts against the run's model call limit.
func (f *BaseFlow) generate(runCtx *core.RunContext, req model.Request, out chan<- core.Message) (*model.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= f.cfg.Retries+1; attempt++ {
		if err := runCtx.Limiter.Increment(); err != nil {
			return nil, err
		}

		runCtx.LogDebug("flow.model.request",
			"attempt", attempt,
			"contents", len(req.Contents),
			"tools", len(req.Tools),
			"stream", req.Stream,
		)

		start := time.Now()
		resp, err := f.generateOnce(runCtx, req, out)
		if err == nil {
			runCtx.LogDebug("flow.model.response",
				"attempt", attempt,
				"finish_reason", resp.FinishReason,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return resp, nil
		}

		if ctxErr := runCtx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		runCtx.LogWarn("flow.model.error", "attempt", attempt, "error", err.Error())

		if attempt <= f.cfg.Retries && f.cfg.RetryBackoff > 0 {
			timer := time.NewTimer(time.Duration(attempt) * f.cfg.RetryBackoff)
			select {
			case <-runCtx.Done():
				timer.Stop()
				return nil, runCtx.Err()
			case <-timer.C:
			}
		}
	}

	return nil, &ModelError{Attempts: f.cfg.Retries + 1, Cause: lastErr}
}

func (f *BaseFlow) generateOnce(runCtx *core.RunContext, req model.Request, out chan<- core.Message) (*model.Response, error) {
	respCh, errCh := f.agent.Model().Generate(runCtx.Context, req)

	var final *model.Response

	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				if !req.Stream {
					continue
				}
				partial := core.NewMessage(runCtx.RunID, f.agent.Name(), resp.Content)
				partial.Partial = true
				if err := f.emit(runCtx, out, partial); err != nil {
					return nil, err
				}
				continue
			}
			r := resp
			final = &r
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		case <-runCtx.Done():
			return nil, runCtx.Err()
		}
	}

	if final == nil {
		return nil, ErrNoFinalResponse
	}

	return final, nil
}

var _ Flow = (*BaseFlow)(nil)

// IsRetryExhausted reports whether err ended a run because retries ran out.
func IsRetryExhausted(err error) bool {
	var mr *MaxRetriesError
	var me *ModelError
	return errors.As(err, &mr) || errors.As(err, &me)
}
