package sentiment

import "testing"

func TestParseScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"plain", "-0.8", -0.8, false},
		{"with whitespace", "  0.35\n", 0.35, false},
		{"clamped high", "1.7", 1, false},
		{"clamped low", "-3", -1, false},
		{"prose wrapped", "-0.6, the customer sounds frustrated", -0.6, false},
		{"trailing period", "0.4.", 0.4, false},
		{"empty", "   ", 0, true},
		{"no number", "neutral", 0, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseScore(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore(%q) error = %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseScore(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}
