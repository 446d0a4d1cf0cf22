// Package guest verifies unauthenticated guests by one-time passcode and
// tracks the resend cooldown the server imposes.
package guest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/service"
	"github.com/iliyamo/cowork-booking/internal/timer"
	"github.com/iliyamo/cowork-booking/internal/workspace"
)

// RateLimitedMessage is the server error cleared automatically when the
// cooldown runs out.
const RateLimitedMessage = "OTP recently sent"

const (
	msgInvalidWorkspaceType = "Invalid workspace type"
	msgInvalidEmail         = "Invalid email address"
	msgSendFailed           = "Failed to send OTP"
)

// Sender issues passcodes.  *service.OtpService implements it.
type Sender interface {
	SendGuestOtp(ctx context.Context, req model.OtpRequest) (model.OtpResult, error)
}

// Input is what the booking form supplies when asking for a passcode.
// WorkspaceType is the display name.
type Input struct {
	Email         string `json:"email"`
	WorkspaceType string `json:"workspace_type"`
	LocationID    string `json:"location_id"`
	BookingDate   string `json:"booking_date"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
}

// State is the verifier as the UI sees it.  Cooldown counts the seconds
// until another request is allowed.
type State struct {
	Loading  bool   `json:"loading"`
	Sent     bool   `json:"sent"`
	Error    string `json:"error,omitempty"`
	Cooldown int    `json:"cooldown"`
}

type Options struct {
	Sender   Sender
	Clock    clockwork.Clock
	Log      *logrus.Entry
	OnChange func(State)
}

// Verifier requests passcodes for one session.  Its cooldown runs on its
// own countdown, independent of any hold countdown.
type Verifier struct {
	sender    Sender
	log       *logrus.Entry
	onChange  func(State)
	countdown *timer.Countdown

	mu sync.Mutex
	st State
}

func New(opts Options) *Verifier {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	v := &Verifier{
		sender:   opts.Sender,
		log:      log.WithField("component", "guest-otp"),
		onChange: opts.OnChange,
	}
	v.countdown = timer.NewCountdown(opts.Clock, v.handleTick, v.handleExpire)
	return v
}

// Snapshot returns the current state.
func (v *Verifier) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.st
}

func (v *Verifier) update(fn func(st *State)) {
	v.mu.Lock()
	fn(&v.st)
	snap := v.st
	v.mu.Unlock()
	if v.onChange != nil {
		v.onChange(snap)
	}
}

// RequestOtp asks for a passcode.  It returns false without doing
// anything while a request is in flight or the cooldown is running.
// Every outcome is reported through State.
func (v *Verifier) RequestOtp(ctx context.Context, in Input) bool {
	v.mu.Lock()
	if v.st.Loading || v.st.Cooldown > 0 {
		v.mu.Unlock()
		return false
	}
	v.st.Loading, v.st.Sent, v.st.Error = true, false, ""
	snap := v.st
	v.mu.Unlock()
	if v.onChange != nil {
		v.onChange(snap)
	}

	enum, ok := workspace.ToEnum(in.WorkspaceType)
	if !ok {
		v.fail(msgInvalidWorkspaceType)
		return true
	}
	if !strings.Contains(in.Email, "@") {
		v.fail(msgInvalidEmail)
		return true
	}

	res, err := v.sender.SendGuestOtp(ctx, model.OtpRequest{
		Email:         in.Email,
		WorkspaceType: enum,
		LocationID:    in.LocationID,
		BookingDate:   in.BookingDate,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
	})
	if err != nil {
		v.log.WithError(err).Warn("otp request rejected locally")
		v.fail(err.Error())
		return true
	}

	if res.Success {
		cooldown := res.Cooldown
		if cooldown <= 0 {
			cooldown = service.DefaultOtpCooldown
		}
		v.countdown.StartFor(time.Duration(cooldown) * time.Second)
		v.update(func(st *State) { st.Loading, st.Sent = false, true })
		v.log.WithField("cooldown", cooldown).Info("otp sent")
		return true
	}

	msg := res.Error
	if msg == "" {
		msg = msgSendFailed
	}
	if res.RetryAfter > 0 {
		v.countdown.StartFor(time.Duration(res.RetryAfter) * time.Second)
	}
	v.fail(msg)
	v.log.WithFields(logrus.Fields{"error": msg, "retry_after": res.RetryAfter}).Info("otp not sent")
	return true
}

func (v *Verifier) fail(msg string) {
	v.update(func(st *State) {
		st.Loading = false
		st.Error = msg
	})
}

// Reset stops the cooldown and clears all state.
func (v *Verifier) Reset() {
	v.countdown.Reset()
	v.update(func(st *State) { *st = State{} })
}

// Close stops the cooldown timer.
func (v *Verifier) Close() {
	v.countdown.Stop()
}

func (v *Verifier) handleTick(rem timer.Remaining) {
	v.update(func(st *State) { st.Cooldown = rem.TotalSeconds() })
}

func (v *Verifier) handleExpire() {
	v.update(func(st *State) {
		st.Cooldown = 0
		if strings.Contains(st.Error, RateLimitedMessage) {
			st.Error = ""
		}
	})
}
