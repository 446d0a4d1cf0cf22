package schedule

import (
	"fmt"
	"sort"
)

// DefaultOpen and DefaultClose bound the bookable day when a workspace does
// not say otherwise.
const (
	DefaultOpen  = "08:00"
	DefaultClose = "18:00"
)

// Interval is an occupied range, typically an existing booking.
type Interval struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// Slot is a free range a guest may book.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Hours bounds the working day.
type Hours struct {
	Open  string
	Close string
}

// DefaultHours returns the 08:00-18:00 working day.
func DefaultHours() Hours { return Hours{Open: DefaultOpen, Close: DefaultClose} }

// Split returns the free slots of length intervalMin between the
// occupied ranges, inside the working hours.  Occupied ranges may overlap
// or arrive unsorted.  A non-positive interval falls back to 60 minutes.
func Split(busy []Interval, intervalMin int, hours Hours) ([]Slot, error) {
	if intervalMin <= 0 {
		intervalMin = 60
	}
	open, err := Parse(hours.Open)
	if err != nil {
		return nil, err
	}
	closeAt, err := Parse(hours.Close)
	if err != nil {
		return nil, err
	}

	type span struct{ s, e int }
	spans := make([]span, 0, len(busy))
	for _, b := range busy {
		s, err := Parse(b.Start)
		if err != nil {
			return nil, fmt.Errorf("booking start: %w", err)
		}
		e, err := Parse(b.End)
		if err != nil {
			return nil, fmt.Errorf("booking end: %w", err)
		}
		spans = append(spans, span{s, e})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].s < spans[j].s })

	var gaps []span
	cursor := open
	for _, sp := range spans {
		if sp.s > cursor {
			gaps = append(gaps, span{cursor, min(sp.s, closeAt)})
		}
		if sp.e > cursor {
			cursor = sp.e
		}
	}
	if cursor < closeAt {
		gaps = append(gaps, span{cursor, closeAt})
	}

	out := []Slot{}
	for _, g := range gaps {
		for start := g.s; start+intervalMin <= g.e; start += intervalMin {
			out = append(out, Slot{Start: Format(start), End: Format(start + intervalMin)})
		}
	}
	return out, nil
}
