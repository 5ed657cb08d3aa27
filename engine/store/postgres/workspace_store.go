package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

// WorkspaceStore persists automation settings and workspace profiles.
type WorkspaceStore struct {
	db *bun.DB
}

var _ workspacex.Store = (*WorkspaceStore)(nil)

func NewWorkspaceStore(db *bun.DB) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

func (s *WorkspaceStore) LoadSettings(ctx context.Context, workspaceID string) (*workspacex.AutomationSettings, error) {
	row := new(dbWorkspaceSettings)
	err := s.db.NewSelect().
		Model(row).
		Where("workspace_id = ?", workspaceID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workspacex.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load workspace settings: %w", err)
	}
	return row.toDomain(), nil
}

func (s *WorkspaceStore) SaveSettings(ctx context.Context, settings *workspacex.AutomationSettings) error {
	row := settingsToRow(settings, time.Now().UTC())
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (workspace_id) DO UPDATE").
		Set("mode = EXCLUDED.mode").
		Set("confidence_threshold = EXCLUDED.confidence_threshold").
		Set("ai_voice = EXCLUDED.ai_voice").
		Set("do_list = EXCLUDED.do_list").
		Set("dont_list = EXCLUDED.dont_list").
		Set("escalation_rules = EXCLUDED.escalation_rules").
		Set("quiet_hours = EXCLUDED.quiet_hours").
		Set("business_hours = EXCLUDED.business_hours").
		Set("compliance_notes = EXCLUDED.compliance_notes").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save workspace settings: %w", err)
	}
	return nil
}

func (s *WorkspaceStore) LoadProfile(ctx context.Context, workspaceID string) (*workspacex.Profile, error) {
	row := new(dbWorkspaceProfile)
	err := s.db.NewSelect().
		Model(row).
		Where("workspace_id = ?", workspaceID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workspacex.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load workspace profile: %w", err)
	}
	return &workspacex.Profile{
		WorkspaceID:  row.WorkspaceID,
		BusinessName: row.BusinessName,
		CatalogSize:  row.CatalogSize,
	}, nil
}
