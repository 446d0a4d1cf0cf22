package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/schedule"
)

// DefaultBookingInterval is used when a workspace does not set one.
const DefaultBookingInterval = 60

// AvailabilityService computes free booking slots for a workspace day.
type AvailabilityService struct {
	db  Selector
	log *logrus.Entry
}

func NewAvailabilityService(db Selector, log *logrus.Entry) *AvailabilityService {
	return &AvailabilityService{db: db, log: componentLog(log, "availability-service")}
}

// AvailableSlots returns the interval-sized slots left free on date
// between hours.Open and hours.Close.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, workspaceID, date string, hours schedule.Hours) ([]schedule.Slot, error) {
	interval, err := s.bookingInterval(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var busy []schedule.Interval
	q := url.Values{
		"select":       {"start_time,end_time"},
		"workspace_id": {"eq." + workspaceID},
		"booking_date": {"eq." + date},
		"status":       {"in.(pending,confirmed)"},
		"order":        {"start_time.asc"},
	}
	if err := s.db.Select(ctx, "workspace_bookings", q, &busy); err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}

	slots, err := schedule.Split(busy, interval, hours)
	if err != nil {
		return nil, fmt.Errorf("split slots: %w", err)
	}
	s.log.WithFields(logrus.Fields{"workspace_id": workspaceID, "date": date, "slots": len(slots)}).Debug("computed availability")
	return slots, nil
}

func (s *AvailabilityService) bookingInterval(ctx context.Context, workspaceID string) (int, error) {
	var rows []struct {
		Interval *int `json:"booking_interval_minutes"`
	}
	q := url.Values{"id": {"eq." + workspaceID}, "select": {"booking_interval_minutes"}}
	if err := s.db.Select(ctx, "workspaces", q, &rows); err != nil {
		return 0, fmt.Errorf("fetch booking interval: %w", err)
	}
	if len(rows) == 0 || rows[0].Interval == nil || *rows[0].Interval <= 0 {
		return DefaultBookingInterval, nil
	}
	return *rows[0].Interval, nil
}
