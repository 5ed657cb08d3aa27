package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
)

// AuditStore appends action log rows. Nothing reads them on the hot path.
type AuditStore struct {
	db *bun.DB
}

var _ auditx.Store = (*AuditStore)(nil)

func NewAuditStore(db *bun.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Insert(ctx context.Context, e *auditx.Entry) error {
	var payload json.RawMessage
	if len(e.Payload) > 0 {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
		payload = raw
	}

	row := &dbActionLog{
		ID:              e.ID,
		WorkspaceID:     e.WorkspaceID,
		ConversationID:  e.ConversationID,
		Action:          string(e.Action),
		Payload:         payload,
		Confidence:      e.Confidence,
		Mode:            e.Mode,
		ExecutionMethod: e.ExecutionMethod,
		Result:          e.Result,
		CreatedAt:       e.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}
