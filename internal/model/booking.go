package model

// BookingRequest is the payload a guest submits to place a hold.  The
// WorkspaceType is the display name; LocationID arrives as text from the
// form and is coerced to a number by the orchestrator.
type BookingRequest struct {
	WorkspaceType string `json:"workspace_type" validate:"required"`
	LocationID    string `json:"location_id" validate:"required"`
	BookingDate   string `json:"booking_date" validate:"required"`
	StartTime     string `json:"start_time" validate:"required"`
	EndTime       string `json:"end_time" validate:"required"`
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	OTP           string `json:"otp,omitempty"`
}

// AttemptParams are the already-mapped values sent to attempt_reservation.
type AttemptParams struct {
	WorkspaceType string // backend enum key
	LocationID    int64
	BookingDate   string // YYYY-MM-DD
	StartTime     string // HH:MM or HH:MM:SS
	EndTime       string
	FullName      string
	Email         string
	Phone         string
	OTP           string
}

// AttemptResult is the normalized answer of a reservation attempt.  When
// Success is false the slot was taken and Alternatives may carry
// suggestions; that is a normal outcome, not a failure.
type AttemptResult struct {
	Success          bool          `json:"success"`
	ReservationID    string        `json:"reservation_id,omitempty"`
	WorkspaceID      string        `json:"workspace_id,omitempty"`
	HoldExpiresAt    string        `json:"hold_expires_at,omitempty"`
	ExpiresInSeconds *int          `json:"expires_in_seconds,omitempty"`
	Alternatives     []Alternative `json:"alternatives"`
}

// CancelResult is the outcome of cancel_reservation.  Error is set instead
// of returning a Go error so callers can cancel optimistically.
type CancelResult struct {
	Success     bool   `json:"success"`
	FinalStatus string `json:"final_status,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}
