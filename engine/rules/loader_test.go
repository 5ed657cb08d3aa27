package rules

import (
	"context"
	"errors"
	"testing"
)

type fakeRuleStore struct {
	guardrails []GuardrailRule
	policies   []EscalationPolicy
	checks     []ComplianceCheck

	guardrailErr error
	policyErr    error
	checkErr     error

	calls int
}

func (f *fakeRuleStore) Guardrails(ctx context.Context, workspaceID string) ([]GuardrailRule, error) {
	f.calls++
	if f.guardrailErr != nil {
		return nil, f.guardrailErr
	}
	return f.guardrails, nil
}

func (f *fakeRuleStore) EscalationPolicies(ctx context.Context, workspaceID string) ([]EscalationPolicy, error) {
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return f.policies, nil
}

func (f *fakeRuleStore) ComplianceChecks(ctx context.Context, workspaceID string) ([]ComplianceCheck, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return f.checks, nil
}

func TestLoaderLoadsAllTables(t *testing.T) {
	t.Parallel()

	store := &fakeRuleStore{
		guardrails: []GuardrailRule{{ID: "g1", Enabled: true}},
		policies:   []EscalationPolicy{{ID: "p1", Enabled: true}},
		checks:     []ComplianceCheck{{ID: "c1", Enabled: true}},
	}
	loader, err := NewLoader(store)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	set := loader.Load(context.Background(), "ws-1")
	if len(set.Guardrails) != 1 || len(set.Policies) != 1 || len(set.Checks) != 1 {
		t.Fatalf("unexpected rule set: %+v", set)
	}
}

func TestLoaderFailsOpenPerTable(t *testing.T) {
	t.Parallel()

	store := &fakeRuleStore{
		guardrails:   []GuardrailRule{{ID: "g1", Enabled: true}},
		policies:     []EscalationPolicy{{ID: "p1", Enabled: true}},
		guardrailErr: errors.New("db timeout"),
		checkErr:     errors.New("db timeout"),
	}
	loader, err := NewLoader(store)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	set := loader.Load(context.Background(), "ws-1")
	if set.Guardrails != nil {
		t.Fatalf("failed guardrail load must degrade to empty, got %v", set.Guardrails)
	}
	if set.Checks != nil {
		t.Fatalf("failed compliance load must degrade to empty, got %v", set.Checks)
	}
	if len(set.Policies) != 1 {
		t.Fatalf("healthy table must still load, got %v", set.Policies)
	}
}

func TestNewLoaderRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewLoader(nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
