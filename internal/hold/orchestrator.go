// Package hold drives a guest's reservation hold: the attempt against the
// booking authority, the expiry countdown, cancellation, and restore after
// a reload from the persisted restore record.
package hold

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/queue"
	"github.com/iliyamo/cowork-booking/internal/service"
	"github.com/iliyamo/cowork-booking/internal/store"
	"github.com/iliyamo/cowork-booking/internal/timer"
	"github.com/iliyamo/cowork-booking/internal/workspace"
)

// Reservations is the slice of the reservation service the orchestrator
// drives.
type Reservations interface {
	AttemptReservation(ctx context.Context, p model.AttemptParams) (model.AttemptResult, error)
	CancelReservationHold(ctx context.Context, reservationID string) model.CancelResult
	RestoreReservation(ctx context.Context, reservationID string) (*model.ReservationDetails, error)
}

// Options configures an Orchestrator.  Reservations and Store are
// required.
type Options struct {
	Reservations Reservations
	Store        store.Store
	StoreKey     string // defaults to store.DefaultKey
	Publisher    queue.Publisher
	Clock        clockwork.Clock
	Log          *logrus.Entry
	SessionID    string

	// To12Hour renders conflict alternatives as "h:MM AM|PM".
	To12Hour bool
	// CancelOnClose makes Close release a hold that is still active and
	// not yet in payment.
	CancelOnClose bool

	// OnChange receives a snapshot after every state change.  It may run
	// on the countdown goroutine and must not block or call back into the
	// orchestrator other than Snapshot.
	OnChange func(State)
	// OnExpire fires once per hold when its countdown reaches zero.
	OnExpire func()
}

// Orchestrator owns one session's hold.  Methods are safe for concurrent
// use.
//
// Lock order: the countdown calls back into the orchestrator while holding
// its own lock, so the orchestrator never calls countdown methods while
// holding mu.
type Orchestrator struct {
	res           Reservations
	store         store.Store
	key           string
	pub           queue.Publisher
	clock         clockwork.Clock
	log           *logrus.Entry
	sessionID     string
	to12Hour      bool
	cancelOnClose bool
	onChange      func(State)
	onExpire      func()
	validate      *validator.Validate
	countdown     *timer.Countdown

	mu            sync.Mutex
	st            State
	workspaceType string // display type of the current hold
}

// New builds an idle orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		res:           opts.Reservations,
		store:         opts.Store,
		key:           opts.StoreKey,
		pub:           opts.Publisher,
		clock:         opts.Clock,
		log:           opts.Log,
		sessionID:     opts.SessionID,
		to12Hour:      opts.To12Hour,
		cancelOnClose: opts.CancelOnClose,
		onChange:      opts.OnChange,
		onExpire:      opts.OnExpire,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		st:            State{Phase: PhaseIdle, Alternatives: []model.Alternative{}},
	}
	if o.key == "" {
		o.key = store.DefaultKey
	}
	if o.pub == nil {
		o.pub = queue.Nop{}
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	if o.log == nil {
		o.log = logrus.NewEntry(logrus.StandardLogger())
	}
	o.log = o.log.WithField("component", "reservation-hold")
	if o.sessionID != "" {
		o.log = o.log.WithField("session_id", o.sessionID)
	}
	o.countdown = timer.NewCountdown(o.clock, o.handleTick, o.handleExpire)
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.st.clone()
}

// FormatTimeRemaining renders the live remainder as MM:SS.
func (o *Orchestrator) FormatTimeRemaining() string {
	return o.Snapshot().FormatTimeRemaining()
}

// update applies fn under the lock and notifies OnChange after releasing
// it.
func (o *Orchestrator) update(fn func(st *State)) {
	o.mu.Lock()
	fn(&o.st)
	snap := o.st.clone()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) notify(snap State) {
	if o.onChange != nil {
		o.onChange(snap)
	}
}

// AttemptHold validates req and asks the authority to hold the slot.
// Validation problems are returned (and mirrored in ReservationError)
// without a network call.  Conflicts and remote failures are not errors:
// they leave the orchestrator in the conflict or failed phase.  A call
// made while another attempt is in flight is ignored.
func (o *Orchestrator) AttemptHold(ctx context.Context, req model.BookingRequest) error {
	params, err := o.params(req)
	if err != nil {
		o.update(func(st *State) {
			st.ReservationError = err.Error()
			st.Alternatives = []model.Alternative{}
			st.Availability, st.AvailabilityMessage = "", ""
		})
		return err
	}

	o.mu.Lock()
	if o.st.Reserving {
		o.mu.Unlock()
		o.log.Debug("attempt ignored: another attempt is in flight")
		return nil
	}
	o.st.Reserving = true
	o.st.Phase = PhaseReserving
	o.st.ReservationError = ""
	o.st.Alternatives = []model.Alternative{}
	o.st.Availability, o.st.AvailabilityMessage = "", ""
	snap := o.st.clone()
	o.mu.Unlock()
	o.notify(snap)

	res, err := o.res.AttemptReservation(ctx, params)
	log := o.log.WithFields(logrus.Fields{"workspace_type": params.WorkspaceType, "booking_date": params.BookingDate})

	switch {
	case err != nil:
		log.WithError(err).Error("reservation attempt failed")
		o.update(func(st *State) {
			st.Reserving = false
			st.Phase = PhaseFailed
			st.ReservationError = err.Error()
		})
		return nil

	case !res.Success:
		alts := service.FormatAlternatives(res.Alternatives, o.to12Hour)
		log.WithField("alternatives", len(alts)).Info("requested slot is taken")
		o.update(func(st *State) {
			st.Reserving = false
			st.Phase = PhaseConflict
			st.Availability = "unavailable"
			st.AvailabilityMessage = UnavailableMessage
			st.Alternatives = alts
		})
		return nil
	}

	expiry := o.expiryOf(res)
	hold := &model.ReservationHold{
		ReservationID: res.ReservationID,
		WorkspaceID:   res.WorkspaceID,
		HoldExpiresAt: expiry,
		BookingDate:   params.BookingDate,
		StartTime:     params.StartTime,
		EndTime:       params.EndTime,
		FullName:      params.FullName,
		Email:         params.Email,
		Phone:         params.Phone,
	}
	o.countdown.Reset()
	o.mu.Lock()
	o.workspaceType = req.WorkspaceType
	o.mu.Unlock()
	o.update(func(st *State) {
		st.Reserving = false
		st.Phase = PhaseHeld
		st.Hold = hold
		st.Remaining = nil
		st.Expired, st.Cancelled, st.PaymentStarted = false, false, false
		st.Availability = "available"
		st.AvailabilityMessage = AvailableMessage
	})

	rec := model.RestoreRecord{ReservationID: res.ReservationID, WorkspaceType: req.WorkspaceType}
	if err := o.store.Save(ctx, o.key, rec); err != nil {
		log.WithError(err).Warn("failed to persist restore record")
	}
	o.publish(ctx, queue.HoldCreated, hold, req.WorkspaceType)
	o.countdown.Start(expiry)
	log.WithField("reservation_id", res.ReservationID).Info("hold placed")
	return nil
}

func (o *Orchestrator) params(req model.BookingRequest) (model.AttemptParams, error) {
	if err := o.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return model.AttemptParams{}, ErrMissingFields
		}
		return model.AttemptParams{}, err
	}
	enum, ok := workspace.ToEnum(req.WorkspaceType)
	if !ok {
		return model.AttemptParams{}, ErrInvalidWorkspaceType
	}
	loc, err := strconv.ParseInt(strings.TrimSpace(req.LocationID), 10, 64)
	if err != nil || loc <= 0 {
		return model.AttemptParams{}, ErrInvalidLocation
	}
	return model.AttemptParams{
		WorkspaceType: enum,
		LocationID:    loc,
		BookingDate:   req.BookingDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		OTP:           req.OTP,
	}, nil
}

// expiryOf prefers the absolute expiry and falls back to the relative
// seconds the authority also returns.
func (o *Orchestrator) expiryOf(res model.AttemptResult) time.Time {
	if t, err := timer.ParseInstant(res.HoldExpiresAt); err == nil {
		return t
	}
	if res.ExpiresInSeconds != nil {
		return o.clock.Now().Add(time.Duration(*res.ExpiresInSeconds) * time.Second).UTC()
	}
	o.log.WithField("hold_expires_at", res.HoldExpiresAt).Warn("hold has no usable expiry")
	return o.clock.Now().UTC()
}

// RestoreFromPersisted picks up the hold named by the restore record when
// it was created by the expectedWorkspaceType flow.  Only a failed
// authority lookup is returned as an error; every other outcome is
// reflected in state.
func (o *Orchestrator) RestoreFromPersisted(ctx context.Context, expectedWorkspaceType string) error {
	rec, err := o.store.Load(ctx, o.key)
	if errors.Is(err, store.ErrCorrupt) {
		o.log.WithError(err).Warn("discarding corrupt restore record")
		o.removeRecord(ctx)
		return nil
	}
	if err != nil {
		o.log.WithError(err).Error("failed to read restore record")
		return err
	}
	if rec == nil {
		o.log.Debug("no saved reservation found")
		return nil
	}
	if rec.WorkspaceType != expectedWorkspaceType {
		o.log.WithFields(logrus.Fields{"saved": rec.WorkspaceType, "expected": expectedWorkspaceType}).Debug("workspace type mismatch")
		return nil
	}

	log := o.log.WithField("reservation_id", rec.ReservationID)
	details, err := o.res.RestoreReservation(ctx, rec.ReservationID)
	if err != nil {
		log.WithError(err).Error("failed to restore reservation")
		return err
	}
	if details == nil {
		log.Info("reservation no longer exists; clearing restore record")
		o.removeRecord(ctx)
		return nil
	}

	hold := holdFrom(details)
	switch details.Status {
	case model.StatusExpired:
		o.countdown.Reset()
		o.setRestored(rec.WorkspaceType, hold, PhaseExpired)
		log.Info("restored expired hold")

	case model.StatusPending, model.StatusPaymentStarted:
		if hold.ExpiredAt(o.clock.Now()) {
			o.countdown.Reset()
			o.setRestored(rec.WorkspaceType, hold, PhaseExpired)
			log.Info("restored hold has already lapsed")
			return nil
		}
		o.countdown.Reset()
		o.setRestored(rec.WorkspaceType, hold, PhaseHeld)
		o.countdown.Start(hold.HoldExpiresAt)
		log.WithField("status", details.Status).Info("restored active hold")

	case model.StatusConfirmed, model.StatusCancelled:
		o.removeRecord(ctx)
		o.countdown.Reset()
		phase := PhaseConfirmed
		if details.Status == model.StatusCancelled {
			phase = PhaseCancelled
		}
		o.setRestored(rec.WorkspaceType, hold, phase)
		log.WithField("status", details.Status).Info("restored hold is final; clearing restore record")

	default:
		o.removeRecord(ctx)
		log.WithField("status", details.Status).Warn("unexpected hold status on restore; clearing restore record")
	}
	return nil
}

func holdFrom(d *model.ReservationDetails) *model.ReservationHold {
	h := &model.ReservationHold{
		ReservationID: d.ID,
		WorkspaceID:   d.WorkspaceID,
		Status:        d.Status,
		BookingDate:   d.BookingDate,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		FullName:      d.FullName,
		Email:         d.Email,
		Phone:         d.GuestPhone,
	}
	if t, err := timer.ParseInstant(d.HoldExpiresAt); err == nil {
		h.HoldExpiresAt = t
	}
	return h
}

func (o *Orchestrator) setRestored(wsType string, hold *model.ReservationHold, phase Phase) {
	o.mu.Lock()
	o.workspaceType = wsType
	o.mu.Unlock()
	o.update(func(st *State) {
		st.Phase = phase
		st.Hold = hold
		st.Remaining = nil
		st.Expired = phase == PhaseExpired
		st.Cancelled = phase == PhaseCancelled
		st.PaymentStarted = false
		st.ReservationError = ""
		st.Alternatives = []model.Alternative{}
		st.Availability, st.AvailabilityMessage = "", ""
	})
}

// CancelHold releases the active hold.  The local outcome is always
// "cancelled" once requested: the countdown stops and the restore record
// is removed whether or not the authority accepted the cancellation.  The
// second result is false when there was no hold to cancel.
func (o *Orchestrator) CancelHold(ctx context.Context) (model.CancelResult, bool) {
	o.mu.Lock()
	if o.st.Hold == nil || o.st.Hold.ReservationID == "" || o.st.Cancelling {
		o.mu.Unlock()
		return model.CancelResult{}, false
	}
	o.st.Cancelling = true
	hold := *o.st.Hold
	wsType := o.workspaceType
	o.mu.Unlock()

	log := o.log.WithField("reservation_id", hold.ReservationID)
	res := o.res.CancelReservationHold(ctx, hold.ReservationID)
	if !res.Success {
		log.WithField("error", res.Error).Warn("remote cancellation failed; cancelling locally")
	}

	o.countdown.Stop()
	o.update(func(st *State) {
		st.Cancelling = false
		st.Cancelled = true
		st.Phase = PhaseCancelled
		st.Remaining = nil
		if st.Hold != nil {
			st.Hold.Status = model.StatusCancelled
		}
	})
	o.removeRecord(ctx)
	o.publish(ctx, queue.HoldCancelled, &hold, wsType)
	log.Info("hold cancelled")
	return res, true
}

// HandlePaymentStart flags the hold as handed over to payment.  The flag
// is local only.  It returns false when there is no live hold.
func (o *Orchestrator) HandlePaymentStart() bool {
	o.mu.Lock()
	live := o.st.HasActiveHold()
	o.mu.Unlock()
	if !live {
		return false
	}
	o.update(func(st *State) {
		st.PaymentStarted = true
		if st.Hold != nil {
			st.Hold.PaymentStarted = true
		}
		if st.Phase == PhaseHeld {
			st.Phase = PhasePaymentStarted
		}
	})
	return true
}

// RestartHold forgets the hold and all timer state.  Storage is left
// alone.  Calling it when idle is harmless.
func (o *Orchestrator) RestartHold() {
	o.countdown.Reset()
	o.mu.Lock()
	o.workspaceType = ""
	o.mu.Unlock()
	o.update(func(st *State) {
		*st = State{Phase: PhaseIdle, Alternatives: []model.Alternative{}}
	})
}

// Close stops the countdown.  With CancelOnClose it also releases a hold
// that is still live and not in payment.
func (o *Orchestrator) Close(ctx context.Context) {
	o.countdown.Stop()
	if !o.cancelOnClose {
		return
	}
	snap := o.Snapshot()
	if !snap.HasActiveHold() || snap.PaymentStarted || snap.Hold.Status == model.StatusPaymentStarted {
		return
	}
	res := o.res.CancelReservationHold(ctx, snap.Hold.ReservationID)
	if !res.Success {
		o.log.WithField("error", res.Error).Warn("failed to auto-cancel reservation on close")
	}
}

func (o *Orchestrator) handleTick(rem timer.Remaining) {
	o.update(func(st *State) {
		r := rem
		st.Remaining = &r
	})
}

// handleExpire runs on the countdown goroutine with the countdown lock
// held.
func (o *Orchestrator) handleExpire() {
	var hold *model.ReservationHold
	var wsType string
	o.mu.Lock()
	if o.st.Hold != nil {
		h := *o.st.Hold
		hold = &h
	}
	wsType = o.workspaceType
	o.mu.Unlock()

	o.update(func(st *State) {
		st.Remaining = nil
		st.Expired = true
		st.Phase = PhaseExpired
	})
	if hold != nil {
		o.log.WithField("reservation_id", hold.ReservationID).Info("hold expired")
		go o.publish(context.Background(), queue.HoldExpired, hold, wsType)
	}
	if o.onExpire != nil {
		o.onExpire()
	}
}

func (o *Orchestrator) removeRecord(ctx context.Context) {
	if err := o.store.Remove(ctx, o.key); err != nil {
		o.log.WithError(err).Warn("failed to remove restore record")
	}
}

func (o *Orchestrator) publish(ctx context.Context, typ string, hold *model.ReservationHold, wsType string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	ev := queue.HoldEvent{
		Type:          typ,
		ReservationID: hold.ReservationID,
		WorkspaceID:   hold.WorkspaceID,
		WorkspaceType: wsType,
		SessionID:     o.sessionID,
		HoldExpiresAt: hold.HoldExpiresAt,
		OccurredAt:    o.clock.Now().UTC(),
	}
	if err := o.pub.Publish(ctx, ev); err != nil {
		o.log.WithError(err).WithField("type", typ).Warn("failed to publish hold event")
	}
}
