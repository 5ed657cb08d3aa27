package pipelinenode

import (
	"errors"
	"strings"
	"time"

	commercex "github.com/tanpawarit/Chative-Commerce-Governance/engine/commerce"
	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	conversationx "github.com/tanpawarit/Chative-Commerce-Governance/engine/conversation"
	governancex "github.com/tanpawarit/Chative-Commerce-Governance/engine/governance"
	rulex "github.com/tanpawarit/Chative-Commerce-Governance/engine/rules"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

var (
	ErrInvalidConversation = errors.New("conversation id is empty")
	ErrInvalidWorkspace    = errors.New("workspace id is empty")
	ErrInvalidMessage      = errors.New("customer message is empty")
)

type GraphInput = contractx.OrchestrationRequest

type GraphOutput = contractx.OrchestrationResult

// GraphState is the single mutable value threaded through the pipeline.
// Halted marks a short-circuit (quiet hours, manual mode): downstream nodes
// pass the state through untouched and Finalize returns Result as-is.
type GraphState struct {
	Req GraphInput
	Now time.Time

	Settings     *workspacex.AutomationSettings
	Profile      *workspacex.Profile
	Conversation *conversationx.Conversation
	History      []conversationx.Message
	Cart         *commercex.Cart

	SystemPrompt  string
	Candidate     string
	ToolSucceeded bool
	ToolCalls     []contractx.ToolCall

	Sentiment  float64
	Confidence int

	RuleSet       rulex.RuleSet
	Violations    []rulex.Violation
	Compliance    rulex.ComplianceResult
	MatchedPolicy *rulex.EscalationPolicy
	Decision      governancex.Decision

	Halted bool
	Result GraphOutput
}

// ValidateRequest normalizes the ingress payload and seeds the state.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return nil, ErrInvalidConversation
	}
	workspaceID := strings.TrimSpace(in.WorkspaceID)
	if workspaceID == "" {
		return nil, ErrInvalidWorkspace
	}
	message := strings.TrimSpace(in.CustomerMessage)
	if message == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Req: GraphInput{
			ConversationID:  conversationID,
			WorkspaceID:     workspaceID,
			CustomerMessage: message,
		},
		Now: nowFn().UTC(),
	}, nil
}

// Finalize returns the accumulated result.
func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, errors.New("graph state is nil")
	}
	return in.Result, nil
}
