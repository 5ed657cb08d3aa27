package governance

import (
	"fmt"
	"strings"

	rulex "github.com/tanpawarit/Chative-Commerce-Governance/engine/rules"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

// Verdict is the governance state for one candidate response.
type Verdict string

const (
	VerdictAutoSend        Verdict = "auto_send"
	VerdictRequireApproval Verdict = "require_approval"
	VerdictSuppressed      Verdict = "suppressed"
)

// ForcedEscalationSentiment is the sentiment floor below which approval is
// required regardless of mode or confidence.
const ForcedEscalationSentiment = -0.7

// Input is everything the decision layer considers for one candidate.
type Input struct {
	Mode                workspacex.Mode
	Confidence          int
	ConfidenceThreshold int
	Sentiment           float64
	QuietHours          bool
	GuardrailViolations []rulex.Violation
	Compliance          rulex.ComplianceResult
	MatchedPolicy       *rulex.EscalationPolicy
}

// Decision is the resolved verdict plus the reasons surfaced to an approver.
type Decision struct {
	Verdict Verdict
	Reason  string
	Blocked bool
	Forced  bool

	// PolicyName and Routing carry the matched escalation policy's
	// notification routing when one matched and the verdict requires
	// approval. Notify mirrors the policy's sendNotification behavior.
	PolicyName string
	Routing    *rulex.EscalationRouting
	Notify     bool
}

// Decide resolves the verdict for one candidate response. Blocking signals
// (block guardrails, failed required compliance) dominate routing signals:
// a hard-rule violation never auto-sends, in any mode. The candidate is
// still surfaced to the approver alongside the violation reason; the human
// decides, the fallback message is not substituted automatically.
func Decide(in Input) Decision {
	d := decide(in)
	if d.Verdict == VerdictRequireApproval && in.MatchedPolicy != nil {
		d.PolicyName = in.MatchedPolicy.Name
		d.Routing = &in.MatchedPolicy.Routing
		d.Notify = in.MatchedPolicy.Behavior.SendNotification
	}
	return d
}

func decide(in Input) Decision {
	if in.QuietHours {
		return Decision{Verdict: VerdictSuppressed, Reason: "quiet hours active"}
	}

	if reason, blocked := blockingReason(in); blocked {
		return Decision{Verdict: VerdictRequireApproval, Reason: reason, Blocked: true}
	}

	forced, forcedReason := forcedEscalation(in)

	switch in.Mode {
	case workspacex.ModeManual:
		// Manual mode never reaches this layer: the engine is inert long
		// before a candidate exists. Listed for state-space completeness.
		return Decision{Verdict: VerdictSuppressed, Reason: "manual mode"}
	case workspacex.ModeHITL:
		return decideHITL(in, forced, forcedReason)
	case workspacex.ModeAuto:
		return decideAuto(forced, forcedReason)
	default:
		// Unknown mode: fail toward human review.
		return Decision{Verdict: VerdictRequireApproval, Reason: fmt.Sprintf("unknown mode %q", in.Mode)}
	}
}

func decideHITL(in Input, forced bool, forcedReason string) Decision {
	if forced {
		return Decision{Verdict: VerdictRequireApproval, Reason: forcedReason, Forced: true}
	}
	if in.Confidence < in.ConfidenceThreshold {
		return Decision{
			Verdict: VerdictRequireApproval,
			Reason:  fmt.Sprintf("confidence %d below threshold %d", in.Confidence, in.ConfidenceThreshold),
		}
	}
	return Decision{Verdict: VerdictAutoSend}
}

// decideAuto never gates on ordinary confidence, only on forced escalation.
func decideAuto(forced bool, forcedReason string) Decision {
	if forced {
		return Decision{Verdict: VerdictRequireApproval, Reason: forcedReason, Forced: true}
	}
	return Decision{Verdict: VerdictAutoSend}
}

func blockingReason(in Input) (string, bool) {
	var reasons []string
	for _, v := range in.GuardrailViolations {
		if v.Enforcement == rulex.EnforcementBlock {
			reasons = append(reasons, fmt.Sprintf("guardrail %q: %s", v.RuleName, v.Reason))
		}
	}
	if !in.Compliance.Passed {
		reasons = append(reasons, fmt.Sprintf("required compliance failed: %s", strings.Join(in.Compliance.ChecksFailed, ", ")))
	}
	if len(reasons) == 0 {
		return "", false
	}
	return strings.Join(reasons, "; "), true
}

func forcedEscalation(in Input) (bool, string) {
	if in.Sentiment < ForcedEscalationSentiment {
		return true, fmt.Sprintf("sentiment %.2f below escalation floor %.1f", in.Sentiment, ForcedEscalationSentiment)
	}
	if in.MatchedPolicy != nil && in.MatchedPolicy.Behavior.PauseAutomation {
		return true, fmt.Sprintf("escalation policy %q matched", in.MatchedPolicy.Name)
	}
	return false, ""
}
