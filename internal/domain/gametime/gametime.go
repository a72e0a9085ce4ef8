// Package gametime maps play clocks and wall-clock instants onto a
// continuous game-time axis measured in minutes.
//
// Regulation runs from 0 to 60: a point in period p with c minutes left on
// the clock sits at 15*p - c.
package gametime

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// PeriodMinutes is the length of one regulation period.
	PeriodMinutes = 15.0
	// RegulationEnd is the game time at which regulation ends.
	RegulationEnd = 60.0
	// overtimeMarker in a clock label collapses the point onto RegulationEnd.
	overtimeMarker = "OT"
)

var periodLabels = map[string]int{"1st": 1, "2nd": 2, "3rd": 3, "4th": 4}

// ParseGameTime converts a label such as "11:01 1st" or "0:00 OT" to game
// time. It never fails: labels with the wrong shape map to 0, unknown
// period labels count as the first period, and an unreadable clock counts
// as no time remaining. Any label containing the overtime marker maps to
// exactly RegulationEnd.
func ParseGameTime(label string) float64 {
	if strings.Contains(label, overtimeMarker) {
		return RegulationEnd
	}
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return 0
	}
	period, ok := periodLabels[parts[1]]
	if !ok {
		period = 1
	}
	remaining, err := parseRemaining(parts[0])
	if err != nil {
		remaining = 0
	}
	return PeriodMinutes*float64(period) - remaining
}

// ParseGameTimeStrict is ParseGameTime without the fallbacks: a label it
// cannot read fully returns ErrMalformedClock.
func ParseGameTimeStrict(label string) (float64, error) {
	if strings.Contains(label, overtimeMarker) {
		return RegulationEnd, nil
	}
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q: want \"<m>:<s> <period>\"", ErrMalformedClock, label)
	}
	period, ok := periodLabels[parts[1]]
	if !ok {
		return 0, fmt.Errorf("%w: %q: unknown period %q", ErrMalformedClock, label, parts[1])
	}
	remaining, err := parseRemaining(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedClock, label, err)
	}
	return PeriodMinutes*float64(period) - remaining, nil
}

// FromClock computes game time from a numeric period and an "M:SS" clock.
// Overtime periods keep their real value (75 - c for the first overtime);
// an unreadable clock counts as no time remaining.
func FromClock(period int, clock string) float64 {
	remaining, err := ParseClock(clock)
	if err != nil {
		remaining = 0
	}
	return PeriodMinutes*float64(period) - remaining
}

// ParseClock returns the minutes left on an "M:SS" clock.
func ParseClock(clock string) (float64, error) {
	m, s, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok || strings.Contains(s, ":") {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes %q", ErrMalformedClock, m)
	}
	seconds, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: seconds %q", ErrMalformedClock, s)
	}
	return float64(minutes) + float64(seconds)/60.0, nil
}

// parseRemaining reads "M:SS" or a bare decimal minute count.
func parseRemaining(token string) (float64, error) {
	if strings.Contains(token, ":") {
		return ParseClock(token)
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, token)
	}
	return v, nil
}

// PeriodLabel formats a numeric period the way clock labels spell it:
// 1st..4th, OT for the fifth period, 2OT and up after that. Periods below
// one are labelled as the first.
func PeriodLabel(period int) string {
	switch {
	case period <= 1:
		return "1st"
	case period == 2:
		return "2nd"
	case period == 3:
		return "3rd"
	case period == 4:
		return "4th"
	case period == 5:
		return overtimeMarker
	default:
		return strconv.Itoa(period-4) + overtimeMarker
	}
}

// Label joins a clock and a period into a clock label.
func Label(clock string, period int) string {
	return clock + " " + PeriodLabel(period)
}
