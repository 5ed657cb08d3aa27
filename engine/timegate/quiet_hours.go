package timegate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuietHoursPeriod suppresses the AI responder inside a recurring window.
// Start/End are "HH:MM" wall-clock times in the period's timezone; a window
// with Start > End spans midnight.
type QuietHoursPeriod struct {
	Enabled  bool     `json:"enabled"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Timezone string   `json:"timezone"`
	Days     []string `json:"days,omitempty"`
}

// InQuietHours reports whether at falls inside any enabled period. Malformed
// periods are skipped rather than suppressing traffic.
func InQuietHours(periods []QuietHoursPeriod, at time.Time) bool {
	for _, p := range periods {
		if !p.Enabled {
			continue
		}
		ok, err := p.contains(at)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

func (p QuietHoursPeriod) contains(at time.Time) (bool, error) {
	loc, err := loadLocation(p.Timezone)
	if err != nil {
		return false, err
	}
	local := at.In(loc)

	if len(p.Days) > 0 && !dayMatches(p.Days, local.Weekday()) {
		return false, nil
	}

	start, err := parseClock(p.Start)
	if err != nil {
		return false, err
	}
	end, err := parseClock(p.End)
	if err != nil {
		return false, err
	}

	minute := local.Hour()*60 + local.Minute()
	if start <= end {
		return minute >= start && minute < end, nil
	}
	// Overnight window, e.g. 21:00-08:00.
	return minute >= start || minute < end, nil
}

func loadLocation(name string) (*time.Location, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(trimmed)
}

func dayMatches(days []string, weekday time.Weekday) bool {
	want := strings.ToLower(weekday.String())
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if d == want || d == want[:3] {
			return true
		}
	}
	return false
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return hour*60 + minute, nil
}
