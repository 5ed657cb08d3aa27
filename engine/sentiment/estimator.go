package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	openaisdk "github.com/openai/openai-go"
)

const systemPrompt = `Score the sentiment of the customer message on a scale from -1.0 (very negative) to 1.0 (very positive). Respond with only the number.`

// Estimator scores customer messages in [-1, 1] using a raw chat-completions
// client. Callers fold any error to neutral: sentiment is advisory to
// governance, never required for correctness.
type Estimator struct {
	client *openaisdk.Client
	model  string
}

func NewEstimator(client *openaisdk.Client, model string) (*Estimator, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("sentiment model is required")
	}
	return &Estimator{client: client, model: model}, nil
}

func (e *Estimator) Estimate(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	resp, err := e.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(e.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(text),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("sentiment completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, errors.New("sentiment completion returned no choices")
	}

	return ParseScore(resp.Choices[0].Message.Content)
}

// ParseScore extracts the scalar and clamps it to [-1, 1].
func ParseScore(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// Models occasionally wrap the number in prose; take the first token.
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			return 0, fmt.Errorf("empty sentiment response")
		}
		score, err = strconv.ParseFloat(strings.Trim(fields[0], ".,"), 64)
		if err != nil {
			return 0, fmt.Errorf("parse sentiment %q: %w", raw, err)
		}
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score, nil
}
