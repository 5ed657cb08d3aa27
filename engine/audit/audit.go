package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Action names the governed decision being recorded.
type Action string

const (
	ActionModeSwitch       Action = "mode_switch"
	ActionAutoSend         Action = "auto_send"
	ActionApprovalRequired Action = "approval_required"
	ActionApprovalResolved Action = "approval_resolved"
)

// Entry is one append-only audit record. Entries are never mutated after
// insert and never drive control flow.
type Entry struct {
	ID              string         `json:"id"`
	WorkspaceID     string         `json:"workspace_id"`
	ConversationID  string         `json:"conversation_id,omitempty"`
	Action          Action         `json:"action"`
	Payload         map[string]any `json:"payload,omitempty"`
	Confidence      int            `json:"confidence"`
	Mode            string         `json:"mode"`
	ExecutionMethod string         `json:"execution_method"`
	Result          string         `json:"result"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Store is the append-only persistence contract.
type Store interface {
	Insert(ctx context.Context, e *Entry) error
}

// Recorder writes audit entries best-effort: a failed write is logged and
// swallowed so it can never abort the primary flow.
type Recorder struct {
	store Store
	now   func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.store == nil {
		return
	}
	e.ID = uuid.NewString()
	e.CreatedAt = r.now().UTC()
	if err := r.store.Insert(ctx, &e); err != nil {
		log.Warn().
			Err(err).
			Str("workspace_id", e.WorkspaceID).
			Str("action", string(e.Action)).
			Msg("audit write failed")
	}
}
