package governance

import (
	"strings"
	"testing"
)

func TestScoreConfidence(t *testing.T) {
	t.Parallel()

	detailed := strings.Repeat("The product details are as follows. ", 8)

	cases := []struct {
		name          string
		response      string
		toolSucceeded bool
		want          int
	}{
		{"baseline", "It costs 590 baht.", false, 75},
		{"hedged", "I'm not sure, it might be in stock.", false, 60},
		{"detailed", detailed, false, 85},
		{"baseline with tool", "It costs 590 baht.", true, 85},
		{"hedged with tool", "Maybe we have it.", true, 70},
		{"detailed with tool capped", detailed, true, 90},
		{"hedging wins over length", detailed + " But I cannot confirm availability.", false, 60},
		{"hedging is case-insensitive", "MAYBE next week.", false, 60},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ScoreConfidence(tc.response, tc.toolSucceeded); got != tc.want {
				t.Fatalf("ScoreConfidence() = %d, want %d", got, tc.want)
			}
		})
	}
}
