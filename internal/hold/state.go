package hold

import (
	"time"

	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/timer"
)

// Phase is the orchestrator's position in the hold lifecycle.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseReserving      Phase = "reserving"
	PhaseHeld           Phase = "held"
	PhaseConflict       Phase = "conflict"
	PhasePaymentStarted Phase = "payment_started"
	PhaseCancelled      Phase = "cancelled"
	PhaseExpired        Phase = "expired"
	PhaseConfirmed      Phase = "confirmed"
	PhaseFailed         Phase = "failed"
)

// HoldDuration is how long the authority keeps a fresh hold.  The live
// countdown always follows the server expiry; this is for display.
const HoldDuration = 15 * time.Minute

// UrgentThreshold marks the point below which the countdown is shown as
// urgent.
const UrgentThreshold = 5 * time.Minute

// Availability messages shown after an attempt.
const (
	AvailableMessage   = "space is available, proceeding to confirmation"
	UnavailableMessage = "Selected Time is taken, select from available alternative below"
)

// State is a point-in-time copy of the orchestrator for the UI.
type State struct {
	Phase               Phase                  `json:"phase"`
	Hold                *model.ReservationHold `json:"hold,omitempty"`
	Remaining           *timer.Remaining       `json:"remaining"`
	TimeRemaining       string                 `json:"time_remaining"`
	Urgent              bool                   `json:"urgent"`
	Expired             bool                   `json:"expired"`
	Cancelled           bool                   `json:"cancelled"`
	PaymentStarted      bool                   `json:"payment_started"`
	Reserving           bool                   `json:"reserving"`
	Cancelling          bool                   `json:"cancelling"`
	Availability        string                 `json:"availability,omitempty"`
	AvailabilityMessage string                 `json:"availability_message,omitempty"`
	Alternatives        []model.Alternative    `json:"alternatives"`
	ReservationError    string                 `json:"reservation_error,omitempty"`
}

// FormatTimeRemaining renders the remainder as MM:SS, or 00:00 when
// there is none.
func (s State) FormatTimeRemaining() string {
	if s.Remaining == nil {
		return "00:00"
	}
	return s.Remaining.String()
}

// HasActiveHold reports whether a hold is live and counting down.
func (s State) HasActiveHold() bool {
	if s.Hold == nil || s.Hold.ReservationID == "" {
		return false
	}
	return s.Phase == PhaseHeld || s.Phase == PhasePaymentStarted
}

func urgent(r *timer.Remaining) bool {
	return r != nil && time.Duration(r.TotalSeconds())*time.Second < UrgentThreshold
}

func (s State) clone() State {
	out := s
	if s.Hold != nil {
		h := *s.Hold
		out.Hold = &h
	}
	if s.Remaining != nil {
		r := *s.Remaining
		out.Remaining = &r
	}
	out.Alternatives = append([]model.Alternative{}, s.Alternatives...)
	out.TimeRemaining = s.FormatTimeRemaining()
	out.Urgent = urgent(s.Remaining)
	return out
}
