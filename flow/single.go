package flow

// SingleAgentFlow is a BaseFlow wired with the default processors for
// instruction rendering, history trimming and content assembly.
type SingleAgentFlow struct{ *BaseFlow }

// NewSingleAgentFlow creates a new single-agent flow.
func NewSingleAgentFlow(agent FlowAgent, cfg Config) *SingleAgentFlow {
	baseFlow := NewBaseFlow(agent, cfg)

	baseFlow.AddRequestProcessor(NewInstructionsProcessor())
	baseFlow.AddRequestProcessor(NewHistoryProcessor())
	baseFlow.AddRequestProcessor(NewContentsProcessor())

	return &SingleAgentFlow{BaseFlow: baseFlow}
}
