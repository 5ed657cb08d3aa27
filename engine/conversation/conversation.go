package conversation

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("conversation not found")

// Sender tags who authored a stored message.
type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderAI       Sender = "ai"
	SenderOperator Sender = "operator"
)

// ChannelAccount carries the credentials needed to reply on the customer's
// messaging channel. Missing credentials are a configuration error, fatal to
// the invocation.
type ChannelAccount struct {
	Provider    string `json:"provider"`
	Destination string `json:"destination"`
	AccessToken string `json:"access_token,omitempty"`
}

// Conversation is the persisted conversation record.
type Conversation struct {
	ID                 string         `json:"id"`
	WorkspaceID        string         `json:"workspace_id"`
	CustomerID         string         `json:"customer_id"`
	Channel            ChannelAccount `json:"channel"`
	LastMessagePreview string         `json:"last_message_preview,omitempty"`
	LastMessageAt      time.Time      `json:"last_message_at"`
	LastAgentReplyAt   time.Time      `json:"last_agent_reply_at"`
}

// Message is one stored transcript entry.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is the conversation persistence contract. RecentMessages returns the
// last limit messages in chronological order.
type Store interface {
	Get(ctx context.Context, conversationID string) (*Conversation, error)
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)
	AppendOutbound(ctx context.Context, conversationID, text string, at time.Time) error
}
