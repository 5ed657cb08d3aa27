package pipelinenode

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	governancex "github.com/tanpawarit/Chative-Commerce-Governance/engine/governance"
	promptx "github.com/tanpawarit/Chative-Commerce-Governance/engine/prompt"
)

// EstimateSentiment scores the customer's message, not the candidate
// response. Estimator failures degrade to neutral.
func EstimateSentiment(ctx context.Context, in *GraphState, estimator contractx.SentimentEstimator) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}
	if in.Halted {
		return in, nil
	}

	score, err := estimator.Estimate(ctx, in.Req.CustomerMessage)
	if err != nil {
		log.Warn().
			Err(err).
			Str("conversation_id", in.Req.ConversationID).
			Msg("sentiment estimate failed, defaulting to neutral")
		score = 0
	}
	in.Sentiment = score
	return in, nil
}

// InjectCompliance appends the workspace compliance notes verbatim when the
// candidate touches policy-adjacent territory.
func InjectCompliance(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}
	if in.Halted {
		return in, nil
	}
	in.Candidate = promptx.InjectComplianceNotes(in.Candidate, in.Settings)
	return in, nil
}

// ScoreConfidence computes the candidate's confidence tier.
func ScoreConfidence(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}
	if in.Halted {
		return in, nil
	}
	in.Confidence = governancex.ScoreConfidence(in.Candidate, in.ToolSucceeded)
	return in, nil
}
