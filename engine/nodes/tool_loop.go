package pipelinenode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	conversationx "github.com/tanpawarit/Chative-Commerce-Governance/engine/conversation"
)

// RunToolLoop drives the tool-calling loop: one round-trip to the completion
// service, sequential execution of any returned tool calls, and one
// follow-up round-trip. Tool calls triggered by the follow-up turn are not
// recursed into; the candidate response is whatever content the final turn
// produced.
func RunToolLoop(
	ctx context.Context,
	in *GraphState,
	completion contractx.CompletionClient,
	tools contractx.ToolGateway,
) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}
	if in.Halted {
		return in, nil
	}

	transcript := historyMessages(in.History, in.Req.CustomerMessage)

	first, err := completion.Complete(ctx, contractx.CompletionRequest{
		System:   in.SystemPrompt,
		Messages: transcript,
	})
	if err != nil {
		return nil, err
	}

	if len(first.ToolCalls) == 0 {
		if strings.TrimSpace(first.Content) == "" {
			return nil, fmt.Errorf("%w: completion returned neither content nor tool calls", contractx.ErrSchemaViolation)
		}
		in.Candidate = first.Content
		return in, nil
	}

	in.ToolCalls = first.ToolCalls
	reqs, err := toToolRequests(first.ToolCalls)
	if err != nil {
		return nil, err
	}

	scope := contractx.ToolScope{
		WorkspaceID:    in.Req.WorkspaceID,
		ConversationID: in.Req.ConversationID,
	}
	results, err := tools.Execute(ctx, scope, reqs)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if res.Succeeded() {
			in.ToolSucceeded = true
		} else {
			log.Debug().
				Str("tool", res.Tool).
				Str("tool_error", res.Error).
				Msg("tool returned error payload")
		}
	}

	// Feed every result back alongside the original turn.
	followUp := append(transcript, contractx.ChatMessage{
		Role:      contractx.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	for _, res := range results {
		payload, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal tool result: %w", err)
		}
		followUp = append(followUp, contractx.ChatMessage{
			Role:       contractx.RoleTool,
			Content:    string(payload),
			ToolCallID: res.ID,
			ToolName:   res.Tool,
		})
	}

	second, err := completion.Complete(ctx, contractx.CompletionRequest{
		System:   in.SystemPrompt,
		Messages: followUp,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(second.Content) == "" {
		return nil, fmt.Errorf("%w: follow-up turn returned no content", contractx.ErrSchemaViolation)
	}

	in.Candidate = second.Content
	return in, nil
}

func historyMessages(history []conversationx.Message, customerMessage string) []contractx.ChatMessage {
	msgs := make([]contractx.ChatMessage, 0, len(history)+1)
	for _, m := range history {
		role := contractx.RoleUser
		if m.Sender != conversationx.SenderCustomer {
			role = contractx.RoleAssistant
		}
		msgs = append(msgs, contractx.ChatMessage{Role: role, Content: m.Content})
	}

	// The inbound message may already be persisted by ingress; only append
	// when the transcript does not end with it.
	if n := len(msgs); n == 0 || msgs[n-1].Role != contractx.RoleUser || msgs[n-1].Content != customerMessage {
		msgs = append(msgs, contractx.ChatMessage{Role: contractx.RoleUser, Content: customerMessage})
	}
	return msgs
}

func toToolRequests(calls []contractx.ToolCall) ([]contractx.ToolRequest, error) {
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrSchemaViolation, call.Name, err)
			}
		}
		reqs = append(reqs, contractx.ToolRequest{
			ID:   call.ID,
			Tool: call.Name,
			Args: args,
		})
	}
	return reqs, nil
}
