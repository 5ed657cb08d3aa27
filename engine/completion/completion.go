package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	commercex "github.com/tanpawarit/Chative-Commerce-Governance/engine/commerce"
	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
)

// Client adapts a tool-calling chat model to the engine's completion
// contract. The commerce tool schema is bound once at construction.
type Client struct {
	model einomodel.ToolCallingChatModel
}

func NewClient(model einomodel.ToolCallingChatModel) (*Client, error) {
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	bound, err := model.WithTools(commercex.ToolInfos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind commerce tools: %v", contractx.ErrModelInvoke, err)
	}
	return &Client{model: bound}, nil
}

// Complete performs one model round-trip and returns text and/or tool calls.
func (c *Client) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	msgs, err := toSchemaMessages(req)
	if err != nil {
		return contractx.CompletionResponse{}, err
	}

	out, err := c.model.Generate(ctx, msgs)
	if err != nil {
		return contractx.CompletionResponse{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if out == nil {
		return contractx.CompletionResponse{}, fmt.Errorf("%w: empty completion", contractx.ErrSchemaViolation)
	}

	resp := contractx.CompletionResponse{Content: strings.TrimSpace(out.Content)}
	for _, call := range out.ToolCalls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return contractx.CompletionResponse{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		resp.ToolCalls = append(resp.ToolCalls, contractx.ToolCall{
			ID:        call.ID,
			Name:      name,
			Arguments: call.Function.Arguments,
		})
	}
	return resp, nil
}

func toSchemaMessages(req contractx.CompletionRequest) ([]*schema.Message, error) {
	msgs := make([]*schema.Message, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case contractx.RoleUser:
			msgs = append(msgs, schema.UserMessage(m.Content))
		case contractx.RoleAssistant:
			msg := &schema.Message{Role: schema.Assistant, Content: m.Content}
			for _, call := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
					ID: call.ID,
					Function: schema.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			msgs = append(msgs, msg)
		case contractx.RoleTool:
			msgs = append(msgs, schema.ToolMessage(m.Content, m.ToolCallID))
		case contractx.RoleSystem:
			msgs = append(msgs, schema.SystemMessage(m.Content))
		default:
			return nil, fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, m.Role)
		}
	}
	return msgs, nil
}
