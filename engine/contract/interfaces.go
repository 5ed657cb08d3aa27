package contract

import "context"

// CompletionClient is the black-box completion capability: given a system
// prompt, transcript, and the engine tool schema, return either text or
// structured tool calls. One call is one model round-trip.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// SentimentEstimator scores text in [-1, 1]. Callers must treat failures as
// neutral; the estimator is advisory, not required for correctness.
type SentimentEstimator interface {
	Estimate(ctx context.Context, text string) (float64, error)
}

// ChannelSender delivers an outbound message on the customer's channel and
// returns the provider message id. A send failure is fatal to the invocation.
type ChannelSender interface {
	Send(ctx context.Context, to string, text string) (string, error)
}

// ToolScope pins tool execution to one workspace and conversation.
type ToolScope struct {
	WorkspaceID    string
	ConversationID string
}

// ToolGateway executes tool requests sequentially and returns one result per
// request, in order.
type ToolGateway interface {
	Execute(ctx context.Context, scope ToolScope, reqs []ToolRequest) ([]ToolResult, error)
}
