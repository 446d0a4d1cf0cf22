package service

import (
	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/schedule"
	"github.com/iliyamo/cowork-booking/internal/timer"
)

// FormatAlternatives trims authority suggestions to "HH:MM" and, when
// to12Hour is set, renders them as "h:MM AM|PM".  It never fails; empty
// input gives an empty, non-nil slice.
func FormatAlternatives(list []model.Alternative, to12Hour bool) []model.Alternative {
	out := make([]model.Alternative, 0, len(list))
	for _, slot := range list {
		start := schedule.Truncate(slot.StartTime)
		end := schedule.Truncate(slot.EndTime)
		if to12Hour {
			start, end = schedule.To12Hour(start), schedule.To12Hour(end)
		}
		out = append(out, model.Alternative{StartTime: start, EndTime: end})
	}
	return out
}

var parseInstant = timer.ParseInstant
