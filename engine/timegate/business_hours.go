package timegate

import (
	"strings"
	"time"
)

// OutOfHoursBehavior is the contract exposed to the message ingress layer
// for traffic arriving while the business is closed.
type OutOfHoursBehavior string

const (
	OutOfHoursQueue     OutOfHoursBehavior = "queue"
	OutOfHoursAutoReply OutOfHoursBehavior = "auto_reply"
	OutOfHoursDisable   OutOfHoursBehavior = "disable"
)

// DaySchedule is one weekday's open window.
type DaySchedule struct {
	Day     string `json:"day"`
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// BusinessHoursConfig governs whether the business itself is open. This is a
// different axis than quiet hours: both can independently suppress a reply.
type BusinessHoursConfig struct {
	Enabled            bool               `json:"enabled"`
	Timezone           string             `json:"timezone"`
	Schedule           []DaySchedule      `json:"schedule,omitempty"`
	Holidays           []string           `json:"holidays,omitempty"` // "YYYY-MM-DD"
	OutOfHoursBehavior OutOfHoursBehavior `json:"out_of_hours_behavior"`
}

// BusinessStatus is the evaluator output consumed by ingress.
type BusinessStatus struct {
	Open     bool               `json:"open"`
	Behavior OutOfHoursBehavior `json:"behavior"`
}

// EvaluateBusinessHours resolves whether the business is open at the given
// instant. A disabled config means always open. Malformed schedule entries
// count as closed for their day.
func EvaluateBusinessHours(cfg BusinessHoursConfig, at time.Time) BusinessStatus {
	behavior := cfg.OutOfHoursBehavior
	if behavior == "" {
		behavior = OutOfHoursQueue
	}

	if !cfg.Enabled {
		return BusinessStatus{Open: true, Behavior: behavior}
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return BusinessStatus{Open: true, Behavior: behavior}
	}
	local := at.In(loc)

	if isHoliday(cfg.Holidays, local) {
		return BusinessStatus{Open: false, Behavior: behavior}
	}

	for _, day := range cfg.Schedule {
		if !day.Enabled || !dayMatches([]string{day.Day}, local.Weekday()) {
			continue
		}
		start, err := parseClock(day.Start)
		if err != nil {
			continue
		}
		end, err := parseClock(day.End)
		if err != nil {
			continue
		}
		minute := local.Hour()*60 + local.Minute()
		if minute >= start && minute < end {
			return BusinessStatus{Open: true, Behavior: behavior}
		}
	}

	return BusinessStatus{Open: false, Behavior: behavior}
}

func isHoliday(holidays []string, local time.Time) bool {
	today := local.Format("2006-01-02")
	for _, h := range holidays {
		if strings.TrimSpace(h) == today {
			return true
		}
	}
	return false
}
