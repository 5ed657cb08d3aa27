package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	approvalx "github.com/tanpawarit/Chative-Commerce-Governance/engine/approval"
	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
)

// Service applies operator mutations to workspace settings. The one
// side-effecting transition is the switch to auto mode: every pending
// approval for the workspace must be superseded before the update returns,
// since no future approval step will exist to resolve them.
type Service struct {
	store     Store
	approvals *approvalx.Service
	audit     *auditx.Recorder
}

func NewService(store Store, approvals *approvalx.Service, audit *auditx.Recorder) (*Service, error) {
	if store == nil {
		return nil, errors.New("workspace store is required")
	}
	if approvals == nil {
		return nil, errors.New("approval service is required")
	}
	return &Service{store: store, approvals: approvals, audit: audit}, nil
}

// UpdateMode persists the new mode. Switching to auto synchronously
// supersedes pending approvals; there is no window where a live auto mode
// and stale pending approvals coexist.
func (s *Service) UpdateMode(ctx context.Context, workspaceID string, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	settings, err := s.store.LoadSettings(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	previous := settings.Mode
	settings.Mode = mode

	// Supersede before persisting the mode: if superseding fails the old
	// mode stays live, so a failed switch can never leave auto mode
	// coexisting with stale pending approvals. The reverse leftover
	// (superseded approvals under the old mode) is harmless.
	superseded := 0
	if mode == ModeAuto {
		superseded, err = s.approvals.SupersedeWorkspace(ctx, workspaceID)
		if err != nil {
			return err
		}
	}

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	log.Info().
		Str("workspace_id", workspaceID).
		Str("from", string(previous)).
		Str("to", string(mode)).
		Int("superseded", superseded).
		Msg("automation mode updated")

	s.audit.Record(ctx, auditx.Entry{
		WorkspaceID: workspaceID,
		Action:      auditx.ActionModeSwitch,
		Payload: map[string]any{
			"from":       string(previous),
			"to":         string(mode),
			"superseded": superseded,
		},
		Mode:            string(mode),
		ExecutionMethod: "operator",
		Result:          "applied",
	})

	return nil
}
