package pipelinenode

import (
	"context"
	"errors"
	"fmt"

	approvalx "github.com/tanpawarit/Chative-Commerce-Governance/engine/approval"
	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	governancex "github.com/tanpawarit/Chative-Commerce-Governance/engine/governance"
)

// Dispatch branches on the governance verdict: auto-send persists and sends
// the candidate, require-approval inserts a pending approval. The channel
// send happens before any local mutation so a send failure leaves the
// message unanswered rather than marked sent.
func Dispatch(
	ctx context.Context,
	in *GraphState,
	sender contractx.ChannelSender,
	outbound OutboundRecorder,
	approvals *approvalx.Service,
	audit *auditx.Recorder,
) (*GraphState, error) {
	if in == nil || in.Settings == nil {
		return nil, errors.New("graph state is not loaded")
	}
	if in.Halted {
		return in, nil
	}

	switch in.Decision.Verdict {
	case governancex.VerdictAutoSend:
		return dispatchAutoSend(ctx, in, sender, outbound, audit)
	case governancex.VerdictRequireApproval:
		return dispatchApproval(ctx, in, approvals, audit)
	default:
		return nil, fmt.Errorf("unexpected verdict %q at dispatch", in.Decision.Verdict)
	}
}

// OutboundRecorder persists the sent message and updates the conversation
// preview/timestamp.
type OutboundRecorder interface {
	RecordOutbound(ctx context.Context, in *GraphState) error
}

func dispatchAutoSend(
	ctx context.Context,
	in *GraphState,
	sender contractx.ChannelSender,
	outbound OutboundRecorder,
	audit *auditx.Recorder,
) (*GraphState, error) {
	if _, err := sender.Send(ctx, in.Conversation.Channel.Destination, in.Candidate); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrChannelSend, err)
	}
	if err := outbound.RecordOutbound(ctx, in); err != nil {
		return nil, fmt.Errorf("persist outbound message: %w", err)
	}

	audit.Record(ctx, auditx.Entry{
		WorkspaceID:    in.Req.WorkspaceID,
		ConversationID: in.Req.ConversationID,
		Action:         auditx.ActionAutoSend,
		Payload: map[string]any{
			"message":   in.Candidate,
			"sentiment": in.Sentiment,
		},
		Confidence:      in.Confidence,
		Mode:            string(in.Settings.Mode),
		ExecutionMethod: "auto_send",
		Result:          "sent",
	})

	in.Result = GraphOutput{
		Success:    true,
		Confidence: in.Confidence,
		Message:    in.Candidate,
	}
	return in, nil
}

func dispatchApproval(
	ctx context.Context,
	in *GraphState,
	approvals *approvalx.Service,
	audit *auditx.Recorder,
) (*GraphState, error) {
	pa, err := approvals.Create(
		ctx,
		in.Req.ConversationID,
		in.Req.WorkspaceID,
		approvalx.SendMessagePayload{
			To:   in.Conversation.Channel.Destination,
			Text: in.Candidate,
		},
		in.Decision.Reason,
		float64(in.Confidence)/100,
	)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"approval_id": pa.ID,
		"reason":      in.Decision.Reason,
		"blocked":     in.Decision.Blocked,
		"forced":      in.Decision.Forced,
	}
	if in.Decision.Routing != nil {
		payload["policy"] = in.Decision.PolicyName
		payload["send_notification"] = in.Decision.Notify
		payload["notification_type"] = in.Decision.Routing.NotificationType
		payload["notify_emails"] = in.Decision.Routing.NotifyEmails
	}

	audit.Record(ctx, auditx.Entry{
		WorkspaceID:    in.Req.WorkspaceID,
		ConversationID: in.Req.ConversationID,
		Action:         auditx.ActionApprovalRequired,
		Payload:        payload,
		Confidence:      in.Confidence,
		Mode:            string(in.Settings.Mode),
		ExecutionMethod: "pending_approval",
		Result:          "pending_approval",
	})

	in.Result = GraphOutput{
		Success:          true,
		RequiresApproval: true,
		Confidence:       in.Confidence,
		Message:          in.Candidate,
		ApprovalID:       pa.ID,
	}
	return in, nil
}
