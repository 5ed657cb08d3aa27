package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
)

type GuardrailType string

const (
	GuardrailKeyword   GuardrailType = "keyword"
	GuardrailLength    GuardrailType = "length"
	GuardrailPattern   GuardrailType = "pattern"
	GuardrailSentiment GuardrailType = "sentiment"
	GuardrailTopic     GuardrailType = "topic"
)

type Enforcement string

const (
	EnforcementWarn  Enforcement = "warn"
	EnforcementBlock Enforcement = "block"
)

type MatchMode string

const (
	MatchAny MatchMode = "any"
	MatchAll MatchMode = "all"
)

// GuardrailRule is a workspace-configured check on the candidate AI
// response. Condition is a tagged payload keyed by Type; decode errors skip
// the rule rather than suppressing the pipeline.
type GuardrailRule struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            GuardrailType   `json:"type"`
	Condition       json.RawMessage `json:"condition"`
	Enforcement     Enforcement     `json:"enforcement"`
	FallbackMessage string          `json:"fallback_message,omitempty"`
	Priority        int             `json:"priority"`
	Enabled         bool            `json:"enabled"`
}

type KeywordCondition struct {
	Keywords      []string  `json:"keywords"`
	Mode          MatchMode `json:"mode,omitempty"`
	CaseSensitive bool      `json:"case_sensitive,omitempty"`
}

type LengthCondition struct {
	MinChars int `json:"min_chars,omitempty"`
	MaxChars int `json:"max_chars,omitempty"`
}

type PatternCondition struct {
	Pattern string `json:"pattern"`
}

// SentimentCondition violates when the conversation sentiment drops below
// the threshold.
type SentimentCondition struct {
	Threshold float64 `json:"threshold"`
}

type TopicCondition struct {
	Topics []string `json:"topics"`
}

// Violation is one guardrail finding. Enforcement decides whether it merely
// warns or blocks auto-send.
type Violation struct {
	RuleID          string      `json:"rule_id"`
	RuleName        string      `json:"rule_name"`
	Enforcement     Enforcement `json:"enforcement"`
	FallbackMessage string      `json:"fallback_message,omitempty"`
	Reason          string      `json:"reason"`
}

// Blocking reports whether any violation carries block enforcement.
func Blocking(violations []Violation) bool {
	for _, v := range violations {
		if v.Enforcement == EnforcementBlock {
			return true
		}
	}
	return false
}

// EvaluateGuardrails checks every enabled rule against the candidate
// response and conversation facts, in ascending priority. Evaluation never
// short-circuits: all violations are collected.
func EvaluateGuardrails(rulesIn []GuardrailRule, response string, facts contractx.ConversationFacts) []Violation {
	ordered := make([]GuardrailRule, 0, len(rulesIn))
	for _, r := range rulesIn {
		if r.Enabled {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	var violations []Violation
	for _, rule := range ordered {
		reason, violated, err := evaluateGuardrail(rule, response, facts)
		if err != nil {
			log.Warn().
				Err(err).
				Str("rule_id", rule.ID).
				Str("type", string(rule.Type)).
				Msg("guardrail rule skipped")
			continue
		}
		if !violated {
			continue
		}
		violations = append(violations, Violation{
			RuleID:          rule.ID,
			RuleName:        rule.Name,
			Enforcement:     rule.Enforcement,
			FallbackMessage: rule.FallbackMessage,
			Reason:          reason,
		})
	}
	return violations
}

func evaluateGuardrail(rule GuardrailRule, response string, facts contractx.ConversationFacts) (string, bool, error) {
	switch rule.Type {
	case GuardrailKeyword:
		var cond KeywordCondition
		if err := json.Unmarshal(rule.Condition, &cond); err != nil {
			return "", false, fmt.Errorf("decode keyword condition: %w", err)
		}
		return evaluateKeyword(cond, response)
	case GuardrailLength:
		var cond LengthCondition
		if err := json.Unmarshal(rule.Condition, &cond); err != nil {
			return "", false, fmt.Errorf("decode length condition: %w", err)
		}
		return evaluateLength(cond, response)
	case GuardrailPattern:
		var cond PatternCondition
		if err := json.Unmarshal(rule.Condition, &cond); err != nil {
			return "", false, fmt.Errorf("decode pattern condition: %w", err)
		}
		return evaluatePattern(cond, response)
	case GuardrailSentiment:
		var cond SentimentCondition
		if err := json.Unmarshal(rule.Condition, &cond); err != nil {
			return "", false, fmt.Errorf("decode sentiment condition: %w", err)
		}
		if facts.Sentiment < cond.Threshold {
			return fmt.Sprintf("conversation sentiment %.2f below threshold %.2f", facts.Sentiment, cond.Threshold), true, nil
		}
		return "", false, nil
	case GuardrailTopic:
		var cond TopicCondition
		if err := json.Unmarshal(rule.Condition, &cond); err != nil {
			return "", false, fmt.Errorf("decode topic condition: %w", err)
		}
		return evaluateTopic(cond, response)
	default:
		return "", false, fmt.Errorf("unknown guardrail type %q", rule.Type)
	}
}

func evaluateKeyword(cond KeywordCondition, response string) (string, bool, error) {
	if len(cond.Keywords) == 0 {
		return "", false, nil
	}
	haystack := response
	if !cond.CaseSensitive {
		haystack = strings.ToLower(response)
	}

	var matched []string
	for _, kw := range cond.Keywords {
		needle := kw
		if !cond.CaseSensitive {
			needle = strings.ToLower(kw)
		}
		if strings.Contains(haystack, needle) {
			matched = append(matched, kw)
		}
	}

	mode := cond.Mode
	if mode == "" {
		mode = MatchAny
	}
	switch mode {
	case MatchAll:
		if len(matched) == len(cond.Keywords) {
			return fmt.Sprintf("response contains all keywords: %s", strings.Join(matched, ", ")), true, nil
		}
	default:
		if len(matched) > 0 {
			return fmt.Sprintf("response contains keywords: %s", strings.Join(matched, ", ")), true, nil
		}
	}
	return "", false, nil
}

func evaluateLength(cond LengthCondition, response string) (string, bool, error) {
	n := len([]rune(response))
	if cond.MinChars > 0 && n < cond.MinChars {
		return fmt.Sprintf("response length %d below minimum %d", n, cond.MinChars), true, nil
	}
	if cond.MaxChars > 0 && n > cond.MaxChars {
		return fmt.Sprintf("response length %d above maximum %d", n, cond.MaxChars), true, nil
	}
	return "", false, nil
}

func evaluatePattern(cond PatternCondition, response string) (string, bool, error) {
	re, err := regexp.Compile(cond.Pattern)
	if err != nil {
		return "", false, fmt.Errorf("compile pattern %q: %w", cond.Pattern, err)
	}
	if re.MatchString(response) {
		return fmt.Sprintf("response matches pattern %q", cond.Pattern), true, nil
	}
	return "", false, nil
}

func evaluateTopic(cond TopicCondition, response string) (string, bool, error) {
	lower := strings.ToLower(response)
	for _, topic := range cond.Topics {
		t := strings.ToLower(strings.TrimSpace(topic))
		if t == "" {
			continue
		}
		if strings.Contains(lower, t) {
			return fmt.Sprintf("response touches restricted topic %q", topic), true, nil
		}
	}
	return "", false, nil
}
