package contract

import "time"

// ChatRole tags a message in the completion transcript.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleTool      ChatRole = "tool"
)

// ChatMessage is one role-tagged entry in the transcript sent to the
// completion service.
type ChatMessage struct {
	Role       ChatRole   `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a structured tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CompletionRequest carries one round-trip to the completion service.
type CompletionRequest struct {
	System   string        `json:"system"`
	Messages []ChatMessage `json:"messages"`
}

// CompletionResponse is either plain content, tool calls, or both.
type CompletionResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolRequest is a parsed tool invocation handed to an executor.
type ToolRequest struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries a tool outcome back into the follow-up model turn.
// Executor failures are values here, never Go errors: the model is expected
// to acknowledge them conversationally.
type ToolResult struct {
	ID     string `json:"id,omitempty"`
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Succeeded reports whether the tool ran without an error payload.
func (r ToolResult) Succeeded() bool {
	return r.Error == ""
}

// OrchestrationRequest is the ingress contract: one inbound customer message.
type OrchestrationRequest struct {
	ConversationID  string `json:"conversation_id"`
	WorkspaceID     string `json:"workspace_id"`
	CustomerMessage string `json:"customer_message"`
}

// OrchestrationResult is what the ingress layer receives back.
type OrchestrationResult struct {
	Success          bool   `json:"success"`
	RequiresApproval bool   `json:"requires_approval"`
	Confidence       int    `json:"confidence"`
	Message          string `json:"message,omitempty"`
	ApprovalID       string `json:"approval_id,omitempty"`
	Queued           bool   `json:"queued"`
}

// ConversationFacts are the live facts rule engines evaluate against.
type ConversationFacts struct {
	ConversationID  string        `json:"conversation_id"`
	WorkspaceID     string        `json:"workspace_id"`
	CustomerMessage string        `json:"customer_message"`
	Sentiment       float64       `json:"sentiment"`
	Confidence      int           `json:"confidence"`
	CartValue       float64       `json:"cart_value"`
	MessageCount    int           `json:"message_count"`
	TimeSinceReply  time.Duration `json:"time_since_reply"`
}
