package timegate

import (
	"testing"
	"time"
)

func TestInQuietHoursSameDayWindow(t *testing.T) {
	t.Parallel()

	periods := []QuietHoursPeriod{
		{Enabled: true, Start: "12:00", End: "13:00", Timezone: "UTC"},
	}

	inside := time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC)
	if !InQuietHours(periods, inside) {
		t.Fatalf("expected 12:30 inside 12:00-13:00")
	}

	atEnd := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	if InQuietHours(periods, atEnd) {
		t.Fatalf("expected 13:00 outside 12:00-13:00 (end exclusive)")
	}
}

func TestInQuietHoursOvernightWindow(t *testing.T) {
	t.Parallel()

	periods := []QuietHoursPeriod{
		{Enabled: true, Start: "21:00", End: "08:00", Timezone: "UTC"},
	}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"late evening", time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), true},
		{"early morning", time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC), true},
		{"midday", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), false},
		{"just before start", time.Date(2026, 3, 2, 20, 59, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := InQuietHours(periods, tc.at); got != tc.want {
			t.Fatalf("%s: InQuietHours() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInQuietHoursTimezone(t *testing.T) {
	t.Parallel()

	// 22:00-06:00 Bangkok time. 16:00 UTC is 23:00 in Bangkok.
	periods := []QuietHoursPeriod{
		{Enabled: true, Start: "22:00", End: "06:00", Timezone: "Asia/Bangkok"},
	}

	at := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	if !InQuietHours(periods, at) {
		t.Fatalf("expected 16:00 UTC to be quiet in Asia/Bangkok 22:00-06:00")
	}

	noon := time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC) // 12:00 Bangkok
	if InQuietHours(periods, noon) {
		t.Fatalf("expected 05:00 UTC (noon Bangkok) to be outside quiet hours")
	}
}

func TestInQuietHoursDayFilter(t *testing.T) {
	t.Parallel()

	// 2026-03-01 is a Sunday, 2026-03-02 a Monday.
	periods := []QuietHoursPeriod{
		{Enabled: true, Start: "00:00", End: "23:59", Timezone: "UTC", Days: []string{"sat", "sunday"}},
	}

	sunday := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !InQuietHours(periods, sunday) {
		t.Fatalf("expected Sunday matched by day filter")
	}

	monday := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if InQuietHours(periods, monday) {
		t.Fatalf("expected Monday outside day filter")
	}
}

func TestInQuietHoursSkipsMalformedAndDisabled(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	periods := []QuietHoursPeriod{
		{Enabled: false, Start: "00:00", End: "23:59", Timezone: "UTC"},
		{Enabled: true, Start: "noon", End: "23:59", Timezone: "UTC"},
		{Enabled: true, Start: "00:00", End: "23:59", Timezone: "Mars/Olympus"},
	}
	if InQuietHours(periods, at) {
		t.Fatalf("disabled and malformed periods must not suppress traffic")
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseClock(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseClock(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
