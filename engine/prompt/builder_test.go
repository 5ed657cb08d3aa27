package prompt

import (
	"strings"
	"testing"

	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

func TestBuildLayersSettings(t *testing.T) {
	t.Parallel()

	settings := &workspacex.AutomationSettings{
		AIVoice:         "Friendly, casual, uses the customer's first name.",
		DoList:          []string{"Suggest accessories", ""},
		DontList:        []string{"Promise delivery dates"},
		ComplianceNotes: "All refunds are processed within 14 days.",
	}
	facts := Facts{BusinessName: "Nova Gear", CatalogSize: 42, CartItems: 2, CartTotal: 1880}

	got := Build(settings, facts)

	for _, want := range []string{
		"sales assistant",
		"You represent Nova Gear.",
		"catalog currently has 42 products",
		"cart has 2 items totalling 1880.00",
		"Friendly, casual",
		"Suggest accessories",
		"Promise delivery dates",
		"All refunds are processed within 14 days.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}

	// The brand voice is layered after the core framework, never before.
	if strings.Index(got, "Brand voice") < strings.Index(got, "sales assistant") {
		t.Fatalf("brand voice must come after the core framework")
	}
}

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	got := Build(nil, Facts{})
	if !strings.Contains(got, "You represent this store.") {
		t.Fatalf("expected business name fallback:\n%s", got)
	}
	if !strings.Contains(got, "cart is empty") {
		t.Fatalf("expected empty cart line:\n%s", got)
	}
}

func TestInjectComplianceNotes(t *testing.T) {
	t.Parallel()

	settings := &workspacex.AutomationSettings{
		ComplianceNotes: "Refunds take up to 14 days.",
	}

	cases := []struct {
		name     string
		response string
		injected bool
	}{
		{"refund mention", "You can request a refund from your order page.", true},
		{"warranty mention", "The Warranty covers two years.", true},
		{"no trigger", "The blue one ships tomorrow.", false},
	}
	for _, tc := range cases {
		got := InjectComplianceNotes(tc.response, settings)
		injected := strings.Contains(got, "Refunds take up to 14 days.")
		if injected != tc.injected {
			t.Fatalf("%s: injected = %v, want %v", tc.name, injected, tc.injected)
		}
		if !strings.HasPrefix(got, tc.response) {
			t.Fatalf("%s: injection must append, not rewrite", tc.name)
		}
	}
}

func TestInjectComplianceNotesWithoutNotes(t *testing.T) {
	t.Parallel()

	settings := &workspacex.AutomationSettings{ComplianceNotes: "   "}
	response := "You can request a refund anytime."
	if got := InjectComplianceNotes(response, settings); got != response {
		t.Fatalf("blank notes must leave the response untouched")
	}
}
