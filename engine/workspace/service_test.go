package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	approvalx "github.com/tanpawarit/Chative-Commerce-Governance/engine/approval"
	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
)

type fakeSettingsStore struct {
	settings *AutomationSettings
	loadErr  error
	saveErr  error
	saved    []*AutomationSettings
}

func (f *fakeSettingsStore) LoadSettings(ctx context.Context, workspaceID string) (*AutomationSettings, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	cp := *f.settings
	return &cp, nil
}

func (f *fakeSettingsStore) SaveSettings(ctx context.Context, settings *AutomationSettings) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *settings
	f.saved = append(f.saved, &cp)
	return nil
}

func (f *fakeSettingsStore) LoadProfile(ctx context.Context, workspaceID string) (*Profile, error) {
	return &Profile{WorkspaceID: workspaceID}, nil
}

type fakeApprovalStore struct {
	pending      int
	superseded   int
	supersedeErr error
}

func (f *fakeApprovalStore) Insert(ctx context.Context, pa *approvalx.PendingApproval) error {
	return nil
}

func (f *fakeApprovalStore) Get(ctx context.Context, id string) (*approvalx.PendingApproval, error) {
	return nil, approvalx.ErrNotFound
}

func (f *fakeApprovalStore) Resolve(ctx context.Context, pa *approvalx.PendingApproval) error {
	return nil
}

func (f *fakeApprovalStore) SupersedeAll(ctx context.Context, workspaceID string, at time.Time) (int, error) {
	if f.supersedeErr != nil {
		return 0, f.supersedeErr
	}
	n := f.pending
	f.pending = 0
	f.superseded += n
	return n, nil
}

func (f *fakeApprovalStore) ListPending(ctx context.Context, workspaceID string) ([]*approvalx.PendingApproval, error) {
	return nil, nil
}

type nopSender struct{}

func (nopSender) Send(ctx context.Context, to string, text string) (string, error) {
	return "msg-1", nil
}

type fakeAuditStore struct {
	entries []auditx.Entry
}

func (f *fakeAuditStore) Insert(ctx context.Context, e *auditx.Entry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func newTestService(t *testing.T, store Store, approvals *fakeApprovalStore) (*Service, *fakeAuditStore) {
	t.Helper()
	approvalSvc, err := approvalx.NewService(approvals, nopSender{}, nil)
	if err != nil {
		t.Fatalf("approval service: %v", err)
	}
	auditStore := &fakeAuditStore{}
	svc, err := NewService(store, approvalSvc, auditx.NewRecorder(auditStore))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, auditStore
}

func TestUpdateModeToAutoSupersedesPending(t *testing.T) {
	t.Parallel()

	store := &fakeSettingsStore{
		settings: &AutomationSettings{WorkspaceID: "ws-1", Mode: ModeHITL, ConfidenceThreshold: 80},
	}
	approvals := &fakeApprovalStore{pending: 3}
	svc, audit := newTestService(t, store, approvals)

	if err := svc.UpdateMode(context.Background(), "ws-1", ModeAuto); err != nil {
		t.Fatalf("UpdateMode() error = %v", err)
	}

	if len(store.saved) != 1 || store.saved[0].Mode != ModeAuto {
		t.Fatalf("unexpected saved settings: %+v", store.saved)
	}
	if approvals.superseded != 3 {
		t.Fatalf("expected 3 approvals superseded, got %d", approvals.superseded)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != auditx.ActionModeSwitch {
		t.Fatalf("expected one mode_switch audit entry, got %+v", audit.entries)
	}
}

func TestUpdateModeSupersedeFailureKeepsOldMode(t *testing.T) {
	t.Parallel()

	store := &fakeSettingsStore{
		settings: &AutomationSettings{WorkspaceID: "ws-1", Mode: ModeHITL, ConfidenceThreshold: 80},
	}
	approvals := &fakeApprovalStore{pending: 3, supersedeErr: errors.New("supersede down")}
	svc, audit := newTestService(t, store, approvals)

	if err := svc.UpdateMode(context.Background(), "ws-1", ModeAuto); err == nil {
		t.Fatalf("expected supersede failure to surface")
	}

	// The old mode must stay live: auto mode and stale pending approvals
	// never coexist, not even on the failure path.
	if len(store.saved) != 0 {
		t.Fatalf("failed supersede must not persist the mode, saved %+v", store.saved)
	}
	if approvals.pending != 3 {
		t.Fatalf("pending approvals must survive the failed switch, got %d", approvals.pending)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("failed switch must not write audit entries, got %+v", audit.entries)
	}
}

func TestUpdateModeToManualLeavesApprovals(t *testing.T) {
	t.Parallel()

	store := &fakeSettingsStore{
		settings: &AutomationSettings{WorkspaceID: "ws-1", Mode: ModeAuto, ConfidenceThreshold: 80},
	}
	approvals := &fakeApprovalStore{pending: 2}
	svc, _ := newTestService(t, store, approvals)

	if err := svc.UpdateMode(context.Background(), "ws-1", ModeManual); err != nil {
		t.Fatalf("UpdateMode() error = %v", err)
	}
	if approvals.superseded != 0 {
		t.Fatalf("switch away from auto must not supersede, got %d", approvals.superseded)
	}
	if approvals.pending != 2 {
		t.Fatalf("pending approvals must survive, got %d", approvals.pending)
	}
}

func TestUpdateModeRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	store := &fakeSettingsStore{
		settings: &AutomationSettings{WorkspaceID: "ws-1", Mode: ModeHITL},
	}
	svc, _ := newTestService(t, store, &fakeApprovalStore{})

	err := svc.UpdateMode(context.Background(), "ws-1", Mode("turbo"))
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Fatalf("invalid mode must not persist")
	}
}
