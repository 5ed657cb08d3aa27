package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusSuperseded Status = "superseded"
)

// ActionType identifies what the held payload would do when executed.
type ActionType string

const (
	ActionSendMessage ActionType = "send_message"
)

var (
	ErrNotFound           = errors.New("pending approval not found")
	ErrNotPending         = errors.New("approval is not pending")
	ErrReasonRequired     = errors.New("rejection reason is required")
	ErrMissingDestination = errors.New("approval payload has no destination")
)

// PendingApproval is a governance-gated action awaiting human disposition.
// Status transitions: pending -> approved | rejected | superseded, all
// terminal. There is no timeout transition.
type PendingApproval struct {
	ID              string          `json:"id"`
	ConversationID  string          `json:"conversation_id"`
	WorkspaceID     string          `json:"workspace_id"`
	ActionType      ActionType      `json:"action_type"`
	ActionPayload   json.RawMessage `json:"action_payload"`
	AIReasoning     string          `json:"ai_reasoning"`
	ConfidenceScore float64         `json:"confidence_score"`
	Status          Status          `json:"status"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// SendMessagePayload is the stored payload for ActionSendMessage.
type SendMessagePayload struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Store is the persistence contract for pending approvals.
type Store interface {
	Insert(ctx context.Context, pa *PendingApproval) error
	Get(ctx context.Context, id string) (*PendingApproval, error)
	Resolve(ctx context.Context, pa *PendingApproval) error
	SupersedeAll(ctx context.Context, workspaceID string, at time.Time) (int, error)
	ListPending(ctx context.Context, workspaceID string) ([]*PendingApproval, error)
}

// Service drives the approval lifecycle. Approving executes the held payload
// against the channel send path; rejecting never sends.
type Service struct {
	store  Store
	sender contractx.ChannelSender
	audit  *auditx.Recorder
	now    func() time.Time
}

func NewService(store Store, sender contractx.ChannelSender, audit *auditx.Recorder) (*Service, error) {
	if store == nil {
		return nil, errors.New("approval store is required")
	}
	if sender == nil {
		return nil, errors.New("channel sender is required")
	}
	return &Service{store: store, sender: sender, audit: audit, now: time.Now}, nil
}

// Create inserts a new pending approval for a candidate send.
func (s *Service) Create(
	ctx context.Context,
	conversationID string,
	workspaceID string,
	payload SendMessagePayload,
	reasoning string,
	confidence float64,
) (*PendingApproval, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal approval payload: %w", err)
	}

	pa := &PendingApproval{
		ID:              uuid.NewString(),
		ConversationID:  conversationID,
		WorkspaceID:     workspaceID,
		ActionType:      ActionSendMessage,
		ActionPayload:   raw,
		AIReasoning:     reasoning,
		ConfidenceScore: confidence,
		Status:          StatusPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.Insert(ctx, pa); err != nil {
		return nil, fmt.Errorf("insert pending approval: %w", err)
	}
	return pa, nil
}

// Approve executes the stored payload and marks the approval approved. The
// send happens before the status flip so a channel failure leaves the row
// pending and retryable.
func (s *Service) Approve(ctx context.Context, approvalID string) (*PendingApproval, error) {
	pa, err := s.load(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	var payload SendMessagePayload
	if err := json.Unmarshal(pa.ActionPayload, &payload); err != nil {
		return nil, fmt.Errorf("decode approval payload: %w", err)
	}
	if strings.TrimSpace(payload.To) == "" {
		return nil, ErrMissingDestination
	}

	if _, err := s.sender.Send(ctx, payload.To, payload.Text); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrChannelSend, err)
	}

	return s.resolve(ctx, pa, StatusApproved, "")
}

// Reject marks the approval rejected. The reason is mandatory.
func (s *Service) Reject(ctx context.Context, approvalID string, reason string) (*PendingApproval, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	pa, err := s.load(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, pa, StatusRejected, strings.TrimSpace(reason))
}

// SupersedeWorkspace bulk-terminates every pending approval for the
// workspace without executing any payload. Called on a mode switch to auto.
func (s *Service) SupersedeWorkspace(ctx context.Context, workspaceID string) (int, error) {
	n, err := s.store.SupersedeAll(ctx, workspaceID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("supersede approvals: %w", err)
	}
	return n, nil
}

func (s *Service) load(ctx context.Context, approvalID string) (*PendingApproval, error) {
	pa, err := s.store.Get(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if pa.Status != StatusPending {
		return nil, fmt.Errorf("%w: status=%s", ErrNotPending, pa.Status)
	}
	return pa, nil
}

func (s *Service) resolve(ctx context.Context, pa *PendingApproval, status Status, reason string) (*PendingApproval, error) {
	now := s.now().UTC()
	pa.Status = status
	pa.RejectionReason = reason
	pa.ResolvedAt = &now
	if err := s.store.Resolve(ctx, pa); err != nil {
		return nil, fmt.Errorf("resolve approval: %w", err)
	}

	payload := map[string]any{
		"approval_id": pa.ID,
		"status":      string(status),
	}
	if reason != "" {
		payload["reason"] = reason
	}
	s.audit.Record(ctx, auditx.Entry{
		WorkspaceID:     pa.WorkspaceID,
		ConversationID:  pa.ConversationID,
		Action:          auditx.ActionApprovalResolved,
		Payload:         payload,
		Confidence:      int(math.Round(pa.ConfidenceScore * 100)),
		ExecutionMethod: "operator",
		Result:          string(status),
	})

	return pa, nil
}
