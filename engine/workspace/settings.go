package workspace

import (
	"context"
	"errors"
	"strings"

	timegatex "github.com/tanpawarit/Chative-Commerce-Governance/engine/timegate"
)

// Mode is the workspace automation mode. It is a tri-state machine, not a
// pair of booleans: manual is fully passive, hitl gates on confidence, auto
// gates only on forced escalation.
type Mode string

const (
	ModeManual Mode = "manual"
	ModeHITL   Mode = "hitl"
	ModeAuto   Mode = "auto"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeManual, ModeHITL, ModeAuto:
		return true
	}
	return false
}

var (
	ErrSettingsNotFound = errors.New("workspace settings not found")
	ErrInvalidMode      = errors.New("invalid automation mode")
)

// AutomationSettings is the per-workspace governance configuration, read once
// per orchestration run. QuietHours is the only quiet-hours source of truth;
// EscalationRules is advisory prose surfaced to the model, distinct from the
// structured escalation policies in the rules engine.
type AutomationSettings struct {
	WorkspaceID         string                        `json:"workspace_id"`
	Mode                Mode                          `json:"mode"`
	ConfidenceThreshold int                           `json:"confidence_threshold"`
	AIVoice             string                        `json:"ai_voice,omitempty"`
	DoList              []string                      `json:"do_list,omitempty"`
	DontList            []string                      `json:"dont_list,omitempty"`
	EscalationRules     string                        `json:"escalation_rules,omitempty"`
	QuietHours          []timegatex.QuietHoursPeriod  `json:"quiet_hours,omitempty"`
	BusinessHours       timegatex.BusinessHoursConfig `json:"business_hours,omitempty"`
	ComplianceNotes     string                        `json:"compliance_notes,omitempty"`
}

// Profile is the workspace identity surfaced in the system prompt.
type Profile struct {
	WorkspaceID  string `json:"workspace_id"`
	BusinessName string `json:"business_name"`
	CatalogSize  int    `json:"catalog_size"`
}

// Store is the persistence contract for settings and profiles.
type Store interface {
	LoadSettings(ctx context.Context, workspaceID string) (*AutomationSettings, error)
	SaveSettings(ctx context.Context, settings *AutomationSettings) error
	LoadProfile(ctx context.Context, workspaceID string) (*Profile, error)
}

// HasComplianceNotes reports whether the workspace configured compliance text.
func (s *AutomationSettings) HasComplianceNotes() bool {
	return s != nil && strings.TrimSpace(s.ComplianceNotes) != ""
}
