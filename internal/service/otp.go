package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/rpc"
)

// ErrMissingOtpParameters is returned before any network call when the
// request lacks email, workspace type, location or date.
var ErrMissingOtpParameters = errors.New("missing required OTP parameters")

// NetworkErrorMessage replaces transport failures in OTP results.
const NetworkErrorMessage = "Network error: Unable to reach server. Please check your connection."

// DefaultOtpCooldown applies when the server does not name a cooldown.
const DefaultOtpCooldown = 60

// OtpService issues one-time passcodes to guests.
type OtpService struct {
	fn  Invoker
	log *logrus.Entry
}

func NewOtpService(fn Invoker, log *logrus.Entry) *OtpService {
	return &OtpService{fn: fn, log: componentLog(log, "otp-service")}
}

type otpBody struct {
	Email         string `json:"email"`
	WorkspaceType string `json:"workspace_type"`
	LocationID    string `json:"location_id"`
	BookingDate   string `json:"booking_date"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
}

// SendGuestOtp asks the send_guest_otp function to mail a passcode.  A
// rate-limited or rejected request is reported in the result, not as an
// error; only missing parameters produce an error.
func (s *OtpService) SendGuestOtp(ctx context.Context, req model.OtpRequest) (model.OtpResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.WorkspaceType == "" || req.LocationID == "" || req.BookingDate == "" {
		return model.OtpResult{}, ErrMissingOtpParameters
	}

	body := otpBody{
		Email:         email,
		WorkspaceType: req.WorkspaceType,
		LocationID:    req.LocationID,
		BookingDate:   req.BookingDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	}
	var out struct {
		Cooldown *int `json:"cooldown_seconds"`
	}
	err := s.fn.Invoke(ctx, "send_guest_otp", body, &out)
	if err == nil {
		cooldown := DefaultOtpCooldown
		if out.Cooldown != nil && *out.Cooldown > 0 {
			cooldown = *out.Cooldown
		}
		return model.OtpResult{Success: true, Cooldown: cooldown}, nil
	}

	log := s.log.WithField("workspace_type", req.WorkspaceType)
	if rpc.IsTransport(err) {
		log.WithError(err).Warn("otp request could not reach server")
		return model.OtpResult{Success: false, Error: NetworkErrorMessage}, nil
	}

	res := model.OtpResult{Success: false, Error: err.Error()}
	if be, ok := rpc.AsBackend(err); ok {
		raw := be.Body
		res.Error = be.Message
		if msg := gjson.GetBytes(raw, "error"); msg.Type == gjson.String && msg.String() != "" {
			res.Error = msg.String()
		}
		retry := gjson.GetBytes(raw, "retry_after_seconds")
		if !retry.Exists() || retry.Type == gjson.Null {
			retry = gjson.GetBytes(raw, "retryAfter")
		}
		if retry.Exists() {
			res.RetryAfter = int(retry.Int())
		}
	}
	log.WithFields(logrus.Fields{"error": res.Error, "retry_after": res.RetryAfter}).Info("otp request rejected")
	return res, nil
}
