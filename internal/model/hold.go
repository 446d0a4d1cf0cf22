package model

import "time"

// HoldStatus is the lifecycle status the booking authority reports for a
// reservation hold.
type HoldStatus string

const (
	StatusPending        HoldStatus = "pending"
	StatusPaymentStarted HoldStatus = "payment_started"
	StatusConfirmed      HoldStatus = "confirmed"
	StatusCancelled      HoldStatus = "cancelled"
	StatusExpired        HoldStatus = "expired"
)

// ReservationHold represents a provisional, time-limited claim on a
// workspace slot.  The authority issues it; the client only mirrors it.
//
// Fields:
//  ReservationID  – opaque server-issued token.
//  WorkspaceID    – workspace the slot belongs to.
//  HoldExpiresAt  – UTC instant the lease ends.
//  Status         – status as last reported by the server (empty right
//                   after a fresh attempt).
//  BookingDate…   – denormalized booking details, filled on restore.
//  PaymentStarted – client-local annotation set when the guest moves on
//                   to payment.  It is never sent to, or read from, the
//                   server and never persisted.
type ReservationHold struct {
	ReservationID  string     `json:"reservation_id"`
	WorkspaceID    string     `json:"workspace_id"`
	HoldExpiresAt  time.Time  `json:"hold_expires_at"`
	Status         HoldStatus `json:"status,omitempty"`
	BookingDate    string     `json:"booking_date,omitempty"`
	StartTime      string     `json:"start_time,omitempty"`
	EndTime        string     `json:"end_time,omitempty"`
	FullName       string     `json:"full_name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	PaymentStarted bool       `json:"payment_started"`
}

// ExpiredAt reports whether the hold's lease has ended at the given
// instant.  The client-side computation wins over the server status.
func (h ReservationHold) ExpiredAt(now time.Time) bool {
	return !h.HoldExpiresAt.After(now)
}

// RestoreRecord is the minimal state kept in durable client storage so a
// hold can be picked up again after a reload.  WorkspaceType carries the
// display name of the flow that created the hold.
type RestoreRecord struct {
	ReservationID string `json:"reservation_id"`
	WorkspaceType string `json:"workspace_type"`
}

// Alternative is a substitute time range suggested by the authority when
// the requested slot is taken.
type Alternative struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ReservationDetails is the full hold record returned by
// get_reservation_details.
type ReservationDetails struct {
	ID            string     `json:"id"`
	WorkspaceID   string     `json:"workspace_id"`
	BookingDate   string     `json:"booking_date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	HoldExpiresAt string     `json:"hold_expires_at"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	GuestPhone    string     `json:"guest_phone"`
	Status        HoldStatus `json:"status"`
}
