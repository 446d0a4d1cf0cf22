// Package schedule holds time-of-day helpers shared by the booking flow:
// parsing "HH:MM[:SS]" values, rendering them for guests and splitting a
// working day into bookable slots.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadClock is returned when a value is not a valid "HH:MM" or
// "HH:MM:SS" time of day.
var ErrBadClock = errors.New("invalid time of day")

// Parse converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are accepted but ignored.
func Parse(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return h*60 + m, nil
}

// Format renders minutes since midnight as zero-padded "HH:MM".
func Format(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Truncate cuts "HH:MM:SS" down to "HH:MM".  Shorter values are returned
// unchanged.
func Truncate(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// WithSeconds appends ":00" to a bare "HH:MM" value.  Anything else is
// passed through so callers can send values that already carry seconds.
func WithSeconds(s string) string {
	if len(s) == 5 && strings.Count(s, ":") == 1 {
		return s + ":00"
	}
	return s
}

// To12Hour renders "HH:MM" as "h:MM AM|PM".  Hour 0 is 12 AM and hour 12
// is 12 PM.  Values that do not parse are returned as given.
func To12Hour(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return s
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return s
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, m, period)
}

// ValidRange reports whether end is strictly after start.
func ValidRange(start, end string) bool {
	s, err := Parse(start)
	if err != nil {
		return false
	}
	e, err := Parse(end)
	if err != nil {
		return false
	}
	return e > s
}

// WithinHours reports whether [start, end] lies inside the opening hours
// [open, close].
func WithinHours(start, end, open, close string) bool {
	s, err1 := Parse(start)
	e, err2 := Parse(end)
	o, err3 := Parse(open)
	c, err4 := Parse(close)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	return s >= o && e <= c
}
