package governance

import "strings"

const (
	confidenceBaseline = 75
	confidenceHedged   = 60
	confidenceDetailed = 85
	toolUsageBonus     = 10
	confidenceCeiling  = 90

	detailedResponseChars = 200
)

// Uncertainty markers that drop the candidate to the hedged tier.
var hedgingMarkers = []string{
	"not sure",
	"might",
	"possibly",
	"maybe",
	"i'm unsure",
	"cannot confirm",
}

// ScoreConfidence computes the 0-100 confidence for a candidate response.
// The tiers are mutually exclusive: hedging language wins over the detailed
// bonus, then a successful tool call adds a capped bonus on top.
func ScoreConfidence(response string, toolSucceeded bool) int {
	score := confidenceBaseline

	switch {
	case containsHedging(response):
		score = confidenceHedged
	case len([]rune(response)) > detailedResponseChars:
		score = confidenceDetailed
	}

	if toolSucceeded {
		score += toolUsageBonus
		if score > confidenceCeiling {
			score = confidenceCeiling
		}
	}

	return score
}

func containsHedging(response string) bool {
	lower := strings.ToLower(response)
	for _, marker := range hedgingMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
