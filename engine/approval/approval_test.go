package approval

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
)

type fakeApprovalStore struct {
	rows map[string]*PendingApproval

	insertErr  error
	resolveErr error
}

func newFakeApprovalStore() *fakeApprovalStore {
	return &fakeApprovalStore{rows: map[string]*PendingApproval{}}
}

func (f *fakeApprovalStore) Insert(ctx context.Context, pa *PendingApproval) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *pa
	f.rows[pa.ID] = &cp
	return nil
}

func (f *fakeApprovalStore) Get(ctx context.Context, id string) (*PendingApproval, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeApprovalStore) Resolve(ctx context.Context, pa *PendingApproval) error {
	if f.resolveErr != nil {
		return f.resolveErr
	}
	row, ok := f.rows[pa.ID]
	if !ok {
		return ErrNotFound
	}
	if row.Status != StatusPending {
		return ErrNotPending
	}
	cp := *pa
	f.rows[pa.ID] = &cp
	return nil
}

func (f *fakeApprovalStore) SupersedeAll(ctx context.Context, workspaceID string, at time.Time) (int, error) {
	n := 0
	for _, row := range f.rows {
		if row.WorkspaceID == workspaceID && row.Status == StatusPending {
			row.Status = StatusSuperseded
			resolved := at
			row.ResolvedAt = &resolved
			n++
		}
	}
	return n, nil
}

func (f *fakeApprovalStore) ListPending(ctx context.Context, workspaceID string) ([]*PendingApproval, error) {
	var out []*PendingApproval
	for _, row := range f.rows {
		if row.WorkspaceID == workspaceID && row.Status == StatusPending {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type sentMessage struct {
	to   string
	text string
}

type fakeSender struct {
	err  error
	sent []sentMessage
}

func (f *fakeSender) Send(ctx context.Context, to string, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, text: text})
	return "msg-1", nil
}

type fakeAuditStore struct {
	entries []auditx.Entry
}

func (f *fakeAuditStore) Insert(ctx context.Context, e *auditx.Entry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func newTestService(t *testing.T, store Store, sender *fakeSender) (*Service, *fakeAuditStore) {
	t.Helper()
	auditStore := &fakeAuditStore{}
	svc, err := NewService(store, sender, auditx.NewRecorder(auditStore))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, auditStore
}

func createPending(t *testing.T, svc *Service) *PendingApproval {
	t.Helper()
	pa, err := svc.Create(
		context.Background(),
		"conv-1",
		"ws-1",
		SendMessagePayload{To: "line:U123", Text: "Here is your total: 590"},
		"confidence 60 below threshold 80",
		0.60,
	)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return pa
}

func TestCreateStoresPendingWithPayload(t *testing.T) {
	t.Parallel()

	store := newFakeApprovalStore()
	svc, _ := newTestService(t, store, &fakeSender{})

	pa := createPending(t, svc)
	if pa.Status != StatusPending {
		t.Fatalf("status = %q, want pending", pa.Status)
	}
	if pa.ConfidenceScore != 0.60 {
		t.Fatalf("confidence = %v, want 0.60", pa.ConfidenceScore)
	}

	var payload SendMessagePayload
	if err := json.Unmarshal(pa.ActionPayload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.To != "line:U123" || payload.Text == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestApproveSendsThenResolves(t *testing.T) {
	t.Parallel()

	store := newFakeApprovalStore()
	sender := &fakeSender{}
	svc, audit := newTestService(t, store, sender)

	pa := createPending(t, svc)

	resolved, err := svc.Approve(context.Background(), pa.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if resolved.Status != StatusApproved {
		t.Fatalf("status = %q, want approved", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Fatalf("expected ResolvedAt set")
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "line:U123" {
		t.Fatalf("unexpected sends: %+v", sender.sent)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one approval_resolved audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Action != auditx.ActionApprovalResolved || entry.Result != string(StatusApproved) {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.Payload["approval_id"] != pa.ID {
		t.Fatalf("audit entry must carry the approval id, got %+v", entry.Payload)
	}
	if entry.Confidence != 60 {
		t.Fatalf("audit confidence = %d, want 60", entry.Confidence)
	}
}

func TestApproveSendFailureLeavesPending(t *testing.T) {
	t.Parallel()

	store := newFakeApprovalStore()
	sender := &fakeSender{err: errors.New("channel down")}
	svc, audit := newTestService(t, store, sender)

	pa := createPending(t, svc)

	if _, err := svc.Approve(context.Background(), pa.ID); err == nil {
		t.Fatalf("expected send failure to surface")
	}

	stored, err := store.Get(context.Background(), pa.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != StatusPending {
		t.Fatalf("send failure must leave the row pending, got %q", stored.Status)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("unresolved approval must not be audited, got %+v", audit.entries)
	}
}

func TestApproveNonPendingFails(t *testing.T) {
	t.Parallel()

	store := newFakeApprovalStore()
	sender := &fakeSender{}
	svc, _ := newTestService(t, store, sender)

	pa := createPending(t, svc)
	if _, err := svc.Approve(context.Background(), pa.ID); err != nil {
		t.Fatalf("first Approve() error = %v", err)
	}

	if _, err := svc.Approve(context.Background(), pa.ID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending on terminal row, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("terminal row must not send again, sends = %d", len(sender.sent))
	}
}

func TestRejectRequiresReasonAndNeverSends(t *testing.T) {
	t.Parallel()

	store := newFakeApprovalStore()
	sender := &fakeSender{}
	svc, audit := newTestService(t, store, sender)

	pa := createPending(t, svc)

	if _, err := svc.Reject(context.Background(), pa.ID, "   "); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	resolved, err := svc.Reject(context.Background(), pa.ID, "tone is off")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if resolved.Status != StatusRejected || resolved.RejectionReason != "tone is off" {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("reject must never send, sends = %d", len(sender.sent))
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one approval_resolved audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Result != string(StatusRejected) || entry.Payload["reason"] != "tone is off" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
}

func TestSupersedeWorkspace(t *testing.T) {
	t.Parallel()

	store := newFakeApprovalStore()
	sender := &fakeSender{}
	svc, _ := newTestService(t, store, sender)

	first := createPending(t, svc)
	second := createPending(t, svc)
	if _, err := svc.Approve(context.Background(), first.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	n, err := svc.SupersedeWorkspace(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("SupersedeWorkspace() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly the pending row superseded, got %d", n)
	}

	stored, err := store.Get(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != StatusSuperseded {
		t.Fatalf("status = %q, want superseded", stored.Status)
	}

	// Superseded rows are terminal.
	if _, err := svc.Approve(context.Background(), second.ID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending on superseded row, got %v", err)
	}
}

func TestApproveMissingDestination(t *testing.T) {
	t.Parallel()

	store := newFakeApprovalStore()
	sender := &fakeSender{}
	svc, _ := newTestService(t, store, sender)

	pa, err := svc.Create(context.Background(), "conv-1", "ws-1", SendMessagePayload{Text: "hi"}, "r", 0.5)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Approve(context.Background(), pa.ID); !errors.Is(err, ErrMissingDestination) {
		t.Fatalf("expected ErrMissingDestination, got %v", err)
	}
}
