package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	rulex "github.com/tanpawarit/Chative-Commerce-Governance/engine/rules"
)

// RuleStore persists the three governance rule tables. Saves are full
// replacements per workspace: delete-all-then-reinsert in one transaction,
// last writer wins.
type RuleStore struct {
	db *bun.DB
}

var _ rulex.Store = (*RuleStore)(nil)

func NewRuleStore(db *bun.DB) *RuleStore {
	return &RuleStore{db: db}
}

func (s *RuleStore) Guardrails(ctx context.Context, workspaceID string) ([]rulex.GuardrailRule, error) {
	var rows []dbGuardrailRule
	err := s.db.NewSelect().
		Model(&rows).
		Where("workspace_id = ?", workspaceID).
		Order("priority ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load guardrails: %w", err)
	}
	rules := make([]rulex.GuardrailRule, len(rows))
	for i, row := range rows {
		rules[i] = row.toDomain()
	}
	return rules, nil
}

func (s *RuleStore) EscalationPolicies(ctx context.Context, workspaceID string) ([]rulex.EscalationPolicy, error) {
	var rows []dbEscalationPolicy
	err := s.db.NewSelect().
		Model(&rows).
		Where("workspace_id = ?", workspaceID).
		Order("priority ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load escalation policies: %w", err)
	}
	policies := make([]rulex.EscalationPolicy, len(rows))
	for i, row := range rows {
		policies[i] = row.toDomain()
	}
	return policies, nil
}

func (s *RuleStore) ComplianceChecks(ctx context.Context, workspaceID string) ([]rulex.ComplianceCheck, error) {
	var rows []dbComplianceCheck
	err := s.db.NewSelect().
		Model(&rows).
		Where("workspace_id = ?", workspaceID).
		Order("priority ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load compliance checks: %w", err)
	}
	checks := make([]rulex.ComplianceCheck, len(rows))
	for i, row := range rows {
		checks[i] = row.toDomain()
	}
	return checks, nil
}

// ReplaceGuardrails swaps the workspace's guardrail set atomically.
func (s *RuleStore) ReplaceGuardrails(ctx context.Context, workspaceID string, rules []rulex.GuardrailRule) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*dbGuardrailRule)(nil)).
			Where("workspace_id = ?", workspaceID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete guardrails: %w", err)
		}
		if len(rules) == 0 {
			return nil
		}
		rows := make([]dbGuardrailRule, len(rules))
		for i, r := range rules {
			rows[i] = dbGuardrailRule{
				ID:              r.ID,
				WorkspaceID:     workspaceID,
				Name:            r.Name,
				Type:            string(r.Type),
				Condition:       r.Condition,
				Enforcement:     string(r.Enforcement),
				FallbackMessage: r.FallbackMessage,
				Priority:        r.Priority,
				Enabled:         r.Enabled,
			}
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert guardrails: %w", err)
		}
		return nil
	})
}

// ReplaceEscalationPolicies swaps the workspace's escalation policies atomically.
func (s *RuleStore) ReplaceEscalationPolicies(ctx context.Context, workspaceID string, policies []rulex.EscalationPolicy) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*dbEscalationPolicy)(nil)).
			Where("workspace_id = ?", workspaceID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete escalation policies: %w", err)
		}
		if len(policies) == 0 {
			return nil
		}
		rows := make([]dbEscalationPolicy, len(policies))
		for i, p := range policies {
			rows[i] = dbEscalationPolicy{
				ID:          p.ID,
				WorkspaceID: workspaceID,
				Name:        p.Name,
				Triggers:    p.Triggers,
				Routing:     p.Routing,
				Behavior:    p.Behavior,
				Priority:    p.Priority,
				Enabled:     p.Enabled,
			}
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert escalation policies: %w", err)
		}
		return nil
	})
}

// ReplaceComplianceChecks swaps the workspace's compliance checks atomically.
func (s *RuleStore) ReplaceComplianceChecks(ctx context.Context, workspaceID string, checks []rulex.ComplianceCheck) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*dbComplianceCheck)(nil)).
			Where("workspace_id = ?", workspaceID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete compliance checks: %w", err)
		}
		if len(checks) == 0 {
			return nil
		}
		rows := make([]dbComplianceCheck, len(checks))
		for i, c := range checks {
			rows[i] = dbComplianceCheck{
				ID:             c.ID,
				WorkspaceID:    workspaceID,
				Name:           c.Name,
				CheckType:      string(c.CheckType),
				Validation:     c.Validation,
				Trigger:        c.TriggerConditions,
				Enforcement:    string(c.Enforcement),
				ComplianceText: c.ComplianceText,
				Priority:       c.Priority,
				Enabled:        c.Enabled,
			}
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert compliance checks: %w", err)
		}
		return nil
	})
}
