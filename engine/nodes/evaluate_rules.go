package pipelinenode

import (
	"context"
	"errors"

	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	governancex "github.com/tanpawarit/Chative-Commerce-Governance/engine/governance"
	rulex "github.com/tanpawarit/Chative-Commerce-Governance/engine/rules"
)

// EvaluateRules loads the workspace rule set and runs the three engines
// against the candidate and live conversation facts.
func EvaluateRules(ctx context.Context, in *GraphState, loader *rulex.Loader) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}
	if in.Halted {
		return in, nil
	}

	in.RuleSet = loader.Load(ctx, in.Req.WorkspaceID)
	facts := conversationFacts(in)

	in.Violations = rulex.EvaluateGuardrails(in.RuleSet.Guardrails, in.Candidate, facts)
	in.MatchedPolicy = rulex.MatchEscalation(in.RuleSet.Policies, facts)
	in.Compliance = rulex.ValidateCompliance(in.RuleSet.Checks, in.Candidate, in.Req.CustomerMessage)
	return in, nil
}

// Decide resolves the governance verdict. Quiet hours were handled before
// the model ran, so the decision layer sees QuietHours=false here.
func Decide(in *GraphState) (*GraphState, error) {
	if in == nil || in.Settings == nil {
		return nil, errors.New("graph state is not loaded")
	}
	if in.Halted {
		return in, nil
	}

	in.Decision = governancex.Decide(governancex.Input{
		Mode:                in.Settings.Mode,
		Confidence:          in.Confidence,
		ConfidenceThreshold: in.Settings.ConfidenceThreshold,
		Sentiment:           in.Sentiment,
		GuardrailViolations: in.Violations,
		Compliance:          in.Compliance,
		MatchedPolicy:       in.MatchedPolicy,
	})
	return in, nil
}

func conversationFacts(in *GraphState) contractx.ConversationFacts {
	facts := contractx.ConversationFacts{
		ConversationID:  in.Req.ConversationID,
		WorkspaceID:     in.Req.WorkspaceID,
		CustomerMessage: in.Req.CustomerMessage,
		Sentiment:       in.Sentiment,
		Confidence:      in.Confidence,
		MessageCount:    len(in.History),
	}
	if in.Cart != nil {
		facts.CartValue = in.Cart.Total()
	}
	if in.Conversation != nil && !in.Conversation.LastAgentReplyAt.IsZero() {
		facts.TimeSinceReply = in.Now.Sub(in.Conversation.LastAgentReplyAt)
	}
	return facts
}
