package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	approvalx "github.com/tanpawarit/Chative-Commerce-Governance/engine/approval"
)

// ApprovalStore persists pending approvals.
type ApprovalStore struct {
	db *bun.DB
}

var _ approvalx.Store = (*ApprovalStore)(nil)

func NewApprovalStore(db *bun.DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func (s *ApprovalStore) Insert(ctx context.Context, pa *approvalx.PendingApproval) error {
	if _, err := s.db.NewInsert().Model(approvalToRow(pa)).Exec(ctx); err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *ApprovalStore) Get(ctx context.Context, id string) (*approvalx.PendingApproval, error) {
	row := new(dbPendingApproval)
	err := s.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, approvalx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load approval: %w", err)
	}
	return row.toDomain(), nil
}

// Resolve flips a pending row to its terminal status. The status guard in
// the WHERE clause makes concurrent resolutions lose cleanly.
func (s *ApprovalStore) Resolve(ctx context.Context, pa *approvalx.PendingApproval) error {
	res, err := s.db.NewUpdate().
		Model((*dbPendingApproval)(nil)).
		Set("status = ?", string(pa.Status)).
		Set("rejection_reason = ?", pa.RejectionReason).
		Set("resolved_at = ?", pa.ResolvedAt).
		Where("id = ?", pa.ID).
		Where("status = ?", string(approvalx.StatusPending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return approvalx.ErrNotPending
	}
	return nil
}

func (s *ApprovalStore) SupersedeAll(ctx context.Context, workspaceID string, at time.Time) (int, error) {
	res, err := s.db.NewUpdate().
		Model((*dbPendingApproval)(nil)).
		Set("status = ?", string(approvalx.StatusSuperseded)).
		Set("resolved_at = ?", at).
		Where("workspace_id = ?", workspaceID).
		Where("status = ?", string(approvalx.StatusPending)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("supersede approvals: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *ApprovalStore) ListPending(ctx context.Context, workspaceID string) ([]*approvalx.PendingApproval, error) {
	var rows []dbPendingApproval
	err := s.db.NewSelect().
		Model(&rows).
		Where("workspace_id = ?", workspaceID).
		Where("status = ?", string(approvalx.StatusPending)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	out := make([]*approvalx.PendingApproval, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}
