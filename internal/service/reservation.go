package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/identity"
	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/rpc"
	"github.com/iliyamo/cowork-booking/internal/schedule"
)

// ReservationService places, cancels and restores reservation holds.
type ReservationService struct {
	rpc Caller
	log *logrus.Entry
}

// NewReservationService binds the service to an authority client.
func NewReservationService(c Caller, log *logrus.Entry) *ReservationService {
	return &ReservationService{rpc: c, log: componentLog(log, "reservation-service")}
}

type attemptRow struct {
	Success          bool                `json:"success"`
	ReservationID    flexString          `json:"reservation_id"`
	WorkspaceID      flexString          `json:"out_workspace_id"`
	HoldExpiresAt    string              `json:"out_hold_expires_at"`
	ExpiresInSeconds *int                `json:"expires_in_seconds"`
	Alternatives     []model.Alternative `json:"alternatives"`
}

// AttemptReservation asks the authority to hold a slot.  One round trip.
// A taken slot comes back as Success=false with alternatives; transport
// and backend failures are returned as errors for the caller to handle.
// Signed-in users (see identity) book on their account, so the guest
// contact fields are sent as null.
func (s *ReservationService) AttemptReservation(ctx context.Context, p model.AttemptParams) (model.AttemptResult, error) {
	params := map[string]any{
		"p_workspace_type": p.WorkspaceType,
		"p_location_id":    p.LocationID,
		"p_booking_date":   p.BookingDate,
		"p_start_time":     schedule.WithSeconds(p.StartTime),
		"p_end_time":       schedule.WithSeconds(p.EndTime),
		"p_full_name":      nullable(p.FullName),
		"p_email":          nullable(p.Email),
		"p_guest_phone":    nullable(p.Phone),
		"p_otp":            p.OTP,
	}
	if _, ok := identity.FromContext(ctx); ok {
		params["p_full_name"] = nil
		params["p_email"] = nil
		params["p_guest_phone"] = nil
	}

	var rows []attemptRow
	if err := s.rpc.Call(ctx, "attempt_reservation", params, &rows); err != nil {
		s.log.WithError(err).Error("attempt reservation failed")
		return model.AttemptResult{}, fmt.Errorf("attempt reservation: %w", err)
	}
	if len(rows) == 0 {
		return model.AttemptResult{}, fmt.Errorf("attempt reservation: %w", rpc.ErrEmptyResponse)
	}
	row := rows[0]
	alts := row.Alternatives
	if alts == nil {
		alts = []model.Alternative{}
	}
	return model.AttemptResult{
		Success:          row.Success,
		ReservationID:    string(row.ReservationID),
		WorkspaceID:      string(row.WorkspaceID),
		HoldExpiresAt:    row.HoldExpiresAt,
		ExpiresInSeconds: row.ExpiresInSeconds,
		Alternatives:     alts,
	}, nil
}

type cancelRow struct {
	Success     bool   `json:"success"`
	FinalStatus string `json:"final_status"`
	Message     string `json:"message"`
}

// CancelReservationHold asks the authority to release a hold.  It never
// returns an error: failures are folded into CancelResult.Error so the
// caller can cancel optimistically.
func (s *ReservationService) CancelReservationHold(ctx context.Context, reservationID string) model.CancelResult {
	log := s.log.WithField("reservation_id", reservationID)
	var rows []cancelRow
	if err := s.rpc.Call(ctx, "cancel_reservation", map[string]any{"p_reservation_id": reservationID}, &rows); err != nil {
		log.WithError(err).Error("rpc error cancelling reservation")
		msg := err.Error()
		if be, ok := rpc.AsBackend(err); ok {
			msg = be.Message
		}
		return model.CancelResult{Success: false, Error: msg}
	}
	if len(rows) == 0 {
		log.Warn("no response from cancel_reservation")
		return model.CancelResult{Success: false, Error: rpc.ErrEmptyResponse.Error()}
	}
	row := rows[0]
	log.WithFields(logrus.Fields{"success": row.Success, "final_status": row.FinalStatus}).Info("reservation cancellation result")
	return model.CancelResult{Success: row.Success, FinalStatus: row.FinalStatus, Message: row.Message}
}

type detailsRow struct {
	ID            flexString       `json:"id"`
	WorkspaceID   flexString       `json:"workspace_id"`
	BookingDate   string           `json:"booking_date"`
	StartTime     string           `json:"start_time"`
	EndTime       string           `json:"end_time"`
	HoldExpiresAt string           `json:"hold_expires_at"`
	FullName      string           `json:"full_name"`
	Email         string           `json:"email"`
	GuestPhone    string           `json:"guest_phone"`
	Status        model.HoldStatus `json:"status"`
}

// RestoreReservation fetches the full hold record.  It returns (nil, nil)
// when the authority has no such hold: a null result, an empty set or an
// empty object.
func (s *ReservationService) RestoreReservation(ctx context.Context, reservationID string) (*model.ReservationDetails, error) {
	var raw json.RawMessage
	if err := s.rpc.Call(ctx, "get_reservation_details", map[string]any{"p_reservation_id": reservationID}, &raw); err != nil {
		return nil, fmt.Errorf("restore reservation: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var row detailsRow
	if raw[0] == '[' {
		var rows []detailsRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("restore reservation: decode: %w", err)
		}
		if len(rows) == 0 {
			return nil, nil
		}
		row = rows[0]
	} else if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("restore reservation: decode: %w", err)
	}
	if row.ID == "" {
		return nil, nil
	}
	return &model.ReservationDetails{
		ID:            string(row.ID),
		WorkspaceID:   string(row.WorkspaceID),
		BookingDate:   row.BookingDate,
		StartTime:     row.StartTime,
		EndTime:       row.EndTime,
		HoldExpiresAt: row.HoldExpiresAt,
		FullName:      row.FullName,
		Email:         row.Email,
		GuestPhone:    row.GuestPhone,
		Status:        row.Status,
	}, nil
}

// IsReservationExpired reports whether a hold expiry timestamp is in the
// past.  Unparseable timestamps count as expired.
func IsReservationExpired(holdExpiresAt string, now time.Time) bool {
	t, err := parseInstant(holdExpiresAt)
	if err != nil {
		return true
	}
	return !t.After(now)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
