package timer

import (
	"fmt"
	"strings"
	"time"
)

// zoneless layouts are tried when a timestamp carries no offset; such
// values are read as UTC.
var zoneless = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseInstant normalizes an authority timestamp to an absolute UTC
// instant.  Values with an explicit offset or 'Z' are honoured; values
// without one are treated as UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	// Postgres renders "+00" offsets without minutes.
	if t, err := time.Parse("2006-01-02 15:04:05.999999999-07", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999-07", s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range zoneless {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
