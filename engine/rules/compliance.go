package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

type ComplianceType string

const (
	ComplianceDisclosure   ComplianceType = "disclosure"
	ComplianceConsent      ComplianceType = "consent"
	ComplianceDataHandling ComplianceType = "data_handling"
	ComplianceRefundPolicy ComplianceType = "refund_policy"
	ComplianceCustom       ComplianceType = "custom"
)

type ComplianceEnforcement string

const (
	ComplianceRequired    ComplianceEnforcement = "required"
	ComplianceRecommended ComplianceEnforcement = "recommended"
)

// ComplianceValidation describes what the candidate response must contain.
type ComplianceValidation struct {
	RequiredKeywords []string `json:"required_keywords,omitempty"`
	RequiredPhrases  []string `json:"required_phrases,omitempty"`
	Pattern          string   `json:"pattern,omitempty"`
}

// ComplianceTrigger gates the check on the customer's last message.
type ComplianceTrigger struct {
	Keywords []string `json:"keywords,omitempty"`
	Topics   []string `json:"topics,omitempty"`
}

// ComplianceCheck requires a response to carry certain disclosures when
// triggered by customer keywords.
type ComplianceCheck struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	CheckType         ComplianceType        `json:"check_type"`
	Validation        ComplianceValidation  `json:"validation"`
	TriggerConditions ComplianceTrigger     `json:"trigger_conditions"`
	Enforcement       ComplianceEnforcement `json:"enforcement"`
	ComplianceText    string                `json:"compliance_text,omitempty"`
	Priority          int                   `json:"priority"`
	Enabled           bool                  `json:"enabled"`
}

// ComplianceResult is the whole-evaluation verdict. A single failed
// required check flips Passed to false; recommended failures only surface
// as suggestions.
type ComplianceResult struct {
	Passed       bool     `json:"passed"`
	Suggestions  []string `json:"suggestions,omitempty"`
	ChecksFailed []string `json:"checks_failed,omitempty"`
}

// ValidateCompliance runs every enabled check whose trigger matches the
// customer's last message against the candidate response.
func ValidateCompliance(checks []ComplianceCheck, response string, customerMessage string) ComplianceResult {
	ordered := make([]ComplianceCheck, 0, len(checks))
	for _, c := range checks {
		if c.Enabled {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	result := ComplianceResult{Passed: true}
	for _, check := range ordered {
		if !checkTriggered(check.TriggerConditions, customerMessage) {
			continue
		}
		ok, reason, err := checkValidates(check, response)
		if err != nil {
			log.Warn().
				Err(err).
				Str("check_id", check.ID).
				Msg("compliance check skipped")
			continue
		}
		if ok {
			continue
		}
		switch check.Enforcement {
		case ComplianceRequired:
			result.Passed = false
			result.ChecksFailed = append(result.ChecksFailed, check.Name)
		default:
			result.Suggestions = append(result.Suggestions, fmt.Sprintf("%s: %s", check.Name, reason))
		}
	}
	return result
}

func checkTriggered(trigger ComplianceTrigger, customerMessage string) bool {
	if len(trigger.Keywords) == 0 && len(trigger.Topics) == 0 {
		// An untriggered check applies to every message.
		return true
	}
	if containsAnyFold(customerMessage, trigger.Keywords) {
		return true
	}
	return containsAnyFold(customerMessage, trigger.Topics)
}

func checkValidates(check ComplianceCheck, response string) (bool, string, error) {
	lower := strings.ToLower(response)

	for _, kw := range check.Validation.RequiredKeywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if !strings.Contains(lower, k) {
			return false, fmt.Sprintf("missing required keyword %q", kw), nil
		}
	}

	for _, phrase := range check.Validation.RequiredPhrases {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p == "" {
			continue
		}
		if !strings.Contains(lower, p) {
			return false, fmt.Sprintf("missing required phrase %q", phrase), nil
		}
	}

	if pattern := strings.TrimSpace(check.Validation.Pattern); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, "", fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		if !re.MatchString(response) {
			return false, fmt.Sprintf("response does not match pattern %q", pattern), nil
		}
	}

	return true, "", nil
}
