package rules

import "testing"

func refundCheck(enforcement ComplianceEnforcement) ComplianceCheck {
	return ComplianceCheck{
		ID:        "c-refund",
		Name:      "refund policy disclosure",
		CheckType: ComplianceRefundPolicy,
		Validation: ComplianceValidation{
			RequiredKeywords: []string{"14 days"},
		},
		TriggerConditions: ComplianceTrigger{
			Keywords: []string{"refund", "return"},
		},
		Enforcement: enforcement,
		Enabled:     true,
	}
}

func TestValidateComplianceRequiredFailure(t *testing.T) {
	t.Parallel()

	checks := []ComplianceCheck{refundCheck(ComplianceRequired)}

	result := ValidateCompliance(checks, "Sure, we accept returns anytime.", "Can I get a refund?")
	if result.Passed {
		t.Fatalf("missing required keyword must fail the evaluation")
	}
	if len(result.ChecksFailed) != 1 || result.ChecksFailed[0] != "refund policy disclosure" {
		t.Fatalf("unexpected ChecksFailed: %v", result.ChecksFailed)
	}

	ok := ValidateCompliance(checks, "Returns are accepted within 14 days of delivery.", "Can I get a refund?")
	if !ok.Passed {
		t.Fatalf("satisfied check must pass, got failures %v", ok.ChecksFailed)
	}
}

func TestValidateComplianceRecommendedOnlySuggests(t *testing.T) {
	t.Parallel()

	checks := []ComplianceCheck{refundCheck(ComplianceRecommended)}

	result := ValidateCompliance(checks, "Sure, we accept returns anytime.", "Can I get a refund?")
	if !result.Passed {
		t.Fatalf("recommended failure must not flip Passed")
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(result.Suggestions))
	}
}

func TestValidateComplianceTriggerGating(t *testing.T) {
	t.Parallel()

	checks := []ComplianceCheck{refundCheck(ComplianceRequired)}

	// Customer never mentioned refunds, so the check does not apply.
	result := ValidateCompliance(checks, "The blue one ships tomorrow.", "Do you have it in blue?")
	if !result.Passed {
		t.Fatalf("untriggered check must not fail the response")
	}
}

func TestValidateComplianceUntriggeredCheckAppliesAlways(t *testing.T) {
	t.Parallel()

	checks := []ComplianceCheck{
		{
			ID:        "c-disclosure",
			Name:      "ai disclosure",
			CheckType: ComplianceDisclosure,
			Validation: ComplianceValidation{
				RequiredPhrases: []string{"automated assistant"},
			},
			Enforcement: ComplianceRequired,
			Enabled:     true,
		},
	}

	result := ValidateCompliance(checks, "Hello! How can I help?", "hi")
	if result.Passed {
		t.Fatalf("check with no trigger applies to every message")
	}
}

func TestValidateCompliancePatternAndDisabled(t *testing.T) {
	t.Parallel()

	checks := []ComplianceCheck{
		{
			ID:          "c-pattern",
			Name:        "order reference",
			CheckType:   ComplianceCustom,
			Validation:  ComplianceValidation{Pattern: `ORD-[A-Z0-9]{8}`},
			Enforcement: ComplianceRequired,
			Enabled:     true,
			TriggerConditions: ComplianceTrigger{
				Keywords: []string{"order"},
			},
		},
		{
			ID:          "c-off",
			Name:        "disabled",
			CheckType:   ComplianceCustom,
			Validation:  ComplianceValidation{RequiredKeywords: []string{"never present"}},
			Enforcement: ComplianceRequired,
			Enabled:     false,
		},
	}

	result := ValidateCompliance(checks, "Your order ORD-1A2B3C4D is on its way.", "where is my order")
	if !result.Passed {
		t.Fatalf("pattern satisfied and disabled check skipped; got failures %v", result.ChecksFailed)
	}

	result = ValidateCompliance(checks, "It shipped yesterday.", "where is my order")
	if result.Passed {
		t.Fatalf("pattern missing must fail")
	}
}

func TestValidateComplianceBadPatternSkipped(t *testing.T) {
	t.Parallel()

	checks := []ComplianceCheck{
		{
			ID:          "c-bad",
			Name:        "broken pattern",
			CheckType:   ComplianceCustom,
			Validation:  ComplianceValidation{Pattern: `([`},
			Enforcement: ComplianceRequired,
			Enabled:     true,
		},
	}

	result := ValidateCompliance(checks, "anything", "anything")
	if !result.Passed {
		t.Fatalf("uncompilable pattern must skip the check, not fail it")
	}
}
