package model

// OtpRequest scopes a one-time passcode to a guest email, workspace type,
// location and date.  Start and end times are optional.
type OtpRequest struct {
	Email         string
	WorkspaceType string // backend enum key
	LocationID    string
	BookingDate   string
	StartTime     string
	EndTime       string
}

// OtpResult normalizes the answer of the OTP issuance endpoint.  Cooldown
// is set on success; RetryAfter is set when the server rate-limited the
// request.
type OtpResult struct {
	Success    bool   `json:"success"`
	Cooldown   int    `json:"cooldown,omitempty"`
	Error      string `json:"error,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}
