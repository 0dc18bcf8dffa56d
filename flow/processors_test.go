package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/testutil"
	"github.com/hupe1980/agentkit/model"
)

type birthDeps struct{ Year int }

func TestInstructionsProcessor_RendersDeps(t *testing.T) {
	agent := &teAgent{name: "agent", instructions: "Born in {{.Deps.Year}}. You are {{.Agent}}."}
	runCtx := newTERunContext(birthDeps{Year: 1990})

	req := &model.Request{}
	err := NewInstructionsProcessor().ProcessRequest(runCtx, req, &RequestState{Agent: agent})
	require.NoError(t, err)
	assert.Equal(t, "Born in 1990. You are agent.", req.Instructions)
}

func TestInstructionsProcessor_InvalidTemplate(t *testing.T) {
	agent := &teAgent{name: "agent", instructions: "{{.Deps"}
	err := NewInstructionsProcessor().ProcessRequest(newTERunContext(nil), &model.Request{}, &RequestState{Agent: agent})
	require.Error(t, err)
}

func historyOf(n int) []core.Message {
	pairs := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, "question", "answer")
	}
	return testutil.Conversation(pairs...)
}

func TestHistoryProcessor(t *testing.T) {
	counter := TokenCounterFunc(func(s string) int { return len(s) })

	tests := []struct {
		name      string
		cfg       Config
		messages  []core.Message
		pinned    int
		wantLen   int
		wantFirst string
	}{
		{
			name:     "no limits keeps everything",
			messages: append(historyOf(3), core.NewUserMessage("", "now")),
			pinned:   6,
			wantLen:  7,
		},
		{
			name:      "message cap",
			cfg:       Config{MaxHistoryMessages: 3},
			messages:  append(historyOf(3), core.NewUserMessage("", "now")),
			pinned:    6,
			wantLen:   3,
			wantFirst: core.RoleUser,
		},
		{
			name:      "cap never splits at assistant",
			cfg:       Config{MaxHistoryMessages: 2},
			messages:  append(historyOf(3), core.NewUserMessage("", "now")),
			pinned:    6,
			wantLen:   1,
			wantFirst: core.RoleUser,
		},
		{
			name:     "current run is pinned",
			cfg:      Config{MaxHistoryMessages: 1},
			messages: append(historyOf(1), core.NewUserMessage("", "now"), core.NewAssistantMessage("", "a", "tool call")),
			pinned:   2,
			wantLen:  2,
		},
		{
			name:      "token budget",
			cfg:       Config{MaxHistoryTokens: 20, TokenCounter: counter},
			messages:  append(historyOf(3), core.NewUserMessage("", "now")),
			pinned:    6,
			wantLen:   3,
			wantFirst: core.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &RequestState{Config: tt.cfg, Messages: tt.messages, Pinned: tt.pinned}
			require.NoError(t, NewHistoryProcessor().ProcessRequest(newTERunContext(nil), &model.Request{}, st))
			assert.Len(t, st.Messages, tt.wantLen)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, st.Messages[0].Role())
			}
			assert.Equal(t, "now", st.Messages[st.Pinned].Text())
		})
	}
}

func TestContentsProcessor_SkipsPartials(t *testing.T) {
	st := &RequestState{Messages: []core.Message{
		testutil.NewMessageBuilder().UserText("hi").Build(),
		testutil.NewMessageBuilder().AssistantText("h").Partial().Build(),
		testutil.NewMessageBuilder().AssistantText("hello").Build(),
	}}

	req := &model.Request{}
	require.NoError(t, NewContentsProcessor().ProcessRequest(newTERunContext(nil), req, st))
	require.Len(t, req.Contents, 2)
	assert.Equal(t, "hello", req.Contents[1].Text())
}

func TestApproxTokenCounter(t *testing.T) {
	assert.Equal(t, 0, ApproxTokenCounter.Count(""))
	assert.Equal(t, 1, ApproxTokenCounter.Count("abcd"))
	assert.Equal(t, 2, ApproxTokenCounter.Count("abcde"))
}
