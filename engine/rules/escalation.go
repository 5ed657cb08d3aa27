package rules

import (
	"sort"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
)

// EscalationTriggers is the configured trigger set of a policy. Nil fields
// are unconfigured and never count toward a match.
type EscalationTriggers struct {
	SentimentBelow    *float64 `json:"sentiment_below,omitempty"`
	ConfidenceBelow   *int     `json:"confidence_below,omitempty"`
	CartValueMin      *float64 `json:"cart_value_min,omitempty"`
	MessageCountMin   *int     `json:"message_count_min,omitempty"`
	TimeSinceReplyMin *int     `json:"time_since_reply_min,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
}

// EscalationRouting describes where a matched policy notifies.
type EscalationRouting struct {
	NotificationType string   `json:"notification_type,omitempty"`
	NotifyEmails     []string `json:"notify_emails,omitempty"`
}

type EscalationBehavior struct {
	PauseAutomation  bool      `json:"pause_automation"`
	SendNotification bool      `json:"send_notification"`
	MatchMode        MatchMode `json:"match_mode,omitempty"`
}

// EscalationPolicy routes conversations to human attention when its trigger
// set matches live conversation facts.
type EscalationPolicy struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Triggers EscalationTriggers `json:"triggers"`
	Routing  EscalationRouting  `json:"routing"`
	Behavior EscalationBehavior `json:"behavior"`
	Priority int                `json:"priority"`
	Enabled  bool               `json:"enabled"`
}

// MatchEscalation returns the first enabled policy (ascending priority)
// whose trigger set matches under its match mode, or nil. Evaluation stops
// at the first match.
func MatchEscalation(policies []EscalationPolicy, facts contractx.ConversationFacts) *EscalationPolicy {
	ordered := make([]EscalationPolicy, 0, len(policies))
	for _, p := range policies {
		if p.Enabled {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for i := range ordered {
		if policyMatches(ordered[i], facts) {
			return &ordered[i]
		}
	}
	return nil
}

func policyMatches(p EscalationPolicy, facts contractx.ConversationFacts) bool {
	configured := 0
	matched := 0

	test := func(hit bool) {
		configured++
		if hit {
			matched++
		}
	}

	t := p.Triggers
	if t.SentimentBelow != nil {
		test(facts.Sentiment < *t.SentimentBelow)
	}
	if t.ConfidenceBelow != nil {
		test(facts.Confidence < *t.ConfidenceBelow)
	}
	if t.CartValueMin != nil {
		test(facts.CartValue >= *t.CartValueMin)
	}
	if t.MessageCountMin != nil {
		test(facts.MessageCount >= *t.MessageCountMin)
	}
	if t.TimeSinceReplyMin != nil {
		test(facts.TimeSinceReply >= time.Duration(*t.TimeSinceReplyMin)*time.Minute)
	}
	if len(t.Keywords) > 0 {
		test(containsAnyFold(facts.CustomerMessage, t.Keywords))
	}

	if configured == 0 {
		return false
	}

	if p.Behavior.MatchMode == MatchAll {
		return matched == configured
	}
	return matched > 0
}

func containsAnyFold(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
