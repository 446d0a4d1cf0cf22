package hold

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/queue"
	"github.com/iliyamo/cowork-booking/internal/store"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeReservations struct {
	mu         sync.Mutex
	attempt    model.AttemptResult
	attemptErr error
	gate       chan struct{}
	cancel     model.CancelResult
	details    *model.ReservationDetails
	restoreErr error

	attempts, cancels, restores int
	lastParams                  model.AttemptParams
}

func (f *fakeReservations) AttemptReservation(_ context.Context, p model.AttemptParams) (model.AttemptResult, error) {
	f.mu.Lock()
	f.attempts++
	f.lastParams = p
	gate := f.gate
	res, err := f.attempt, f.attemptErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return res, err
}

func (f *fakeReservations) CancelReservationHold(_ context.Context, _ string) model.CancelResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	return f.cancel
}

func (f *fakeReservations) RestoreReservation(_ context.Context, _ string) (*model.ReservationDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restores++
	return f.details, f.restoreErr
}

func (f *fakeReservations) counts() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts, f.cancels, f.restores
}

type memStore struct {
	mu      sync.Mutex
	recs    map[string]model.RestoreRecord
	corrupt bool
}

func newMemStore() *memStore { return &memStore{recs: map[string]model.RestoreRecord{}} }

func (s *memStore) Load(_ context.Context, key string) (*model.RestoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.corrupt {
		return nil, store.ErrCorrupt
	}
	rec, ok := s.recs[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *memStore) Save(_ context.Context, key string, rec model.RestoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[key] = rec
	return nil
}

func (s *memStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, key)
	s.corrupt = false
	return nil
}

func (s *memStore) get(key string) (model.RestoreRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	return rec, ok
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.HoldEvent
}

func (p *fakePublisher) Publish(_ context.Context, ev queue.HoldEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type harness struct {
	o       *Orchestrator
	res     *fakeReservations
	store   *memStore
	pub     *fakePublisher
	clock   *clockwork.FakeClock
	expires atomic.Int32
	changes atomic.Int32
}

func newHarness(t *testing.T, mod func(*Options)) *harness {
	t.Helper()
	h := &harness{
		res:   &fakeReservations{},
		store: newMemStore(),
		pub:   &fakePublisher{},
		clock: clockwork.NewFakeClockAt(base),
	}
	opts := Options{
		Reservations: h.res,
		Store:        h.store,
		Publisher:    h.pub,
		Clock:        h.clock,
		SessionID:    "sess-1",
		OnExpire:     func() { h.expires.Add(1) },
		OnChange:     func(State) { h.changes.Add(1) },
	}
	if mod != nil {
		mod(&opts)
	}
	h.o = New(opts)
	t.Cleanup(func() { h.o.Close(context.Background()) })
	return h
}

func (h *harness) waitTicker(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		h.clock.BlockUntil(1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown ticker was not started")
	}
}

func (h *harness) advance(t *testing.T, want string) {
	t.Helper()
	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return h.o.FormatTimeRemaining() == want
	}, time.Second, 5*time.Millisecond)
}

func validRequest() model.BookingRequest {
	return model.BookingRequest{
		WorkspaceType: "Shared Workspace",
		LocationID:    "3",
		BookingDate:   "2025-06-01",
		StartTime:     "10:00",
		EndTime:       "11:00",
		FullName:      "Ada Guest",
		Email:         "ada@example.com",
		Phone:         "555-0100",
	}
}

func held(expiry time.Time) model.AttemptResult {
	return model.AttemptResult{
		Success:       true,
		ReservationID: "r-1",
		WorkspaceID:   "7",
		HoldExpiresAt: expiry.Format("2006-01-02T15:04:05"),
		Alternatives:  []model.Alternative{},
	}
}

func TestAttemptHoldValidation(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*model.BookingRequest)
		want error
	}{
		{"missing phone", func(r *model.BookingRequest) { r.Phone = "" }, ErrMissingFields},
		{"missing date", func(r *model.BookingRequest) { r.BookingDate = "" }, ErrMissingFields},
		{"unknown type", func(r *model.BookingRequest) { r.WorkspaceType = "Broom Closet" }, ErrInvalidWorkspaceType},
		{"non-numeric location", func(r *model.BookingRequest) { r.LocationID = "downtown" }, ErrInvalidLocation},
		{"zero location", func(r *model.BookingRequest) { r.LocationID = "0" }, ErrInvalidLocation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, nil)
			req := validRequest()
			tc.mod(&req)

			err := h.o.AttemptHold(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
			attempts, _, _ := h.res.counts()
			assert.Zero(t, attempts)
			snap := h.o.Snapshot()
			assert.Equal(t, tc.want.Error(), snap.ReservationError)
			assert.Equal(t, PhaseIdle, snap.Phase)
		})
	}
}

func TestAttemptHoldOtpIsOptional(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(HoldDuration))
	req := validRequest()
	req.OTP = ""
	require.NoError(t, h.o.AttemptHold(context.Background(), req))
	assert.Equal(t, int64(3), h.res.lastParams.LocationID)
	assert.Equal(t, "shared_workspace", h.res.lastParams.WorkspaceType)
}

func TestAttemptHoldSuccess(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(HoldDuration))

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))

	snap := h.o.Snapshot()
	assert.Equal(t, PhaseHeld, snap.Phase)
	require.NotNil(t, snap.Hold)
	assert.Equal(t, "r-1", snap.Hold.ReservationID)
	assert.Equal(t, base.Add(HoldDuration), snap.Hold.HoldExpiresAt)
	assert.Equal(t, "15:00", snap.TimeRemaining)
	assert.False(t, snap.Urgent)
	assert.False(t, snap.Reserving)
	assert.Equal(t, "available", snap.Availability)
	assert.Empty(t, snap.Alternatives)
	assert.True(t, h.o.countdown.Running())

	rec, ok := h.store.get(store.DefaultKey)
	require.True(t, ok)
	assert.Equal(t, model.RestoreRecord{ReservationID: "r-1", WorkspaceType: "Shared Workspace"}, rec)
	assert.Equal(t, []string{queue.HoldCreated}, h.pub.types())

	h.waitTicker(t)
	h.advance(t, "14:59")
	assert.Positive(t, h.changes.Load())
}

func TestAttemptHoldUsesRelativeExpiryFallback(t *testing.T) {
	h := newHarness(t, nil)
	secs := 120
	h.res.attempt = model.AttemptResult{Success: true, ReservationID: "r-1", ExpiresInSeconds: &secs}

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	snap := h.o.Snapshot()
	assert.Equal(t, "02:00", snap.TimeRemaining)
	assert.True(t, snap.Urgent)
}

func TestAttemptHoldConflict(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.To12Hour = true })
	h.res.attempt = model.AttemptResult{
		Success:      false,
		Alternatives: []model.Alternative{{StartTime: "14:00:00", EndTime: "14:30:00"}},
	}

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))

	snap := h.o.Snapshot()
	assert.Equal(t, PhaseConflict, snap.Phase)
	assert.Equal(t, []model.Alternative{{StartTime: "2:00 PM", EndTime: "2:30 PM"}}, snap.Alternatives)
	assert.Equal(t, UnavailableMessage, snap.AvailabilityMessage)
	assert.Nil(t, snap.Hold)
	assert.Nil(t, snap.Remaining)
	assert.False(t, h.o.countdown.Running())
	_, saved := h.store.get(store.DefaultKey)
	assert.False(t, saved)
	assert.Empty(t, h.pub.types())
}

func TestAttemptHoldConflictWithoutAlternatives(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = model.AttemptResult{Success: false}

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	snap := h.o.Snapshot()
	assert.Equal(t, PhaseConflict, snap.Phase)
	assert.NotNil(t, snap.Alternatives)
	assert.Empty(t, snap.Alternatives)
}

func TestAttemptHoldRemoteFailureIsCaptured(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attemptErr = errors.New("attempt reservation: boom")

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	snap := h.o.Snapshot()
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.Equal(t, "attempt reservation: boom", snap.ReservationError)
	assert.False(t, snap.Reserving)
	assert.Nil(t, snap.Hold)
}

func TestAttemptHoldIgnoresReentrantCalls(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(HoldDuration))
	h.res.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- h.o.AttemptHold(context.Background(), validRequest()) }()
	require.Eventually(t, func() bool { return h.o.Snapshot().Reserving }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PhaseReserving, h.o.Snapshot().Phase)

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	close(h.res.gate)
	require.NoError(t, <-done)

	attempts, _, _ := h.res.counts()
	assert.Equal(t, 1, attempts)
	assert.False(t, h.o.Snapshot().Reserving)
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(3 * time.Second))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	assert.Equal(t, "00:03", h.o.FormatTimeRemaining())

	h.waitTicker(t)
	h.advance(t, "00:02")
	h.advance(t, "00:01")
	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.o.Snapshot().Expired }, time.Second, 5*time.Millisecond)

	snap := h.o.Snapshot()
	assert.Equal(t, PhaseExpired, snap.Phase)
	assert.Nil(t, snap.Remaining)
	assert.Equal(t, "00:00", snap.TimeRemaining)
	assert.False(t, h.o.countdown.Running())
	assert.EqualValues(t, 1, h.expires.Load())
	require.Eventually(t, func() bool {
		return len(h.pub.types()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{queue.HoldCreated, queue.HoldExpired}, h.pub.types())

	h.clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, h.expires.Load())
	_, saved := h.store.get(store.DefaultKey)
	assert.True(t, saved)
}

func TestExpiryAtNowIsExpired(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base)

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	snap := h.o.Snapshot()
	assert.True(t, snap.Expired)
	assert.Nil(t, snap.Remaining)
	assert.Equal(t, PhaseExpired, snap.Phase)
	assert.False(t, h.o.countdown.Running())
	assert.EqualValues(t, 1, h.expires.Load())
}

func TestLapsedHoldPublishesCreatedBeforeExpired(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(-time.Minute))

	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	require.Eventually(t, func() bool { return len(h.pub.types()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{queue.HoldCreated, queue.HoldExpired}, h.pub.types())
}

func TestSecondHoldReplacesCountdown(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(2 * time.Second))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))

	h.res.attempt = held(base.Add(10 * time.Minute))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	h.waitTicker(t)

	h.advance(t, "09:59")
	h.advance(t, "09:58")
	h.advance(t, "09:57")
	assert.False(t, h.o.Snapshot().Expired)
	assert.Zero(t, h.expires.Load())
}

func TestRestoreMismatchDoesNotMutate(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.store.Save(context.Background(), store.DefaultKey,
		model.RestoreRecord{ReservationID: "r-1", WorkspaceType: "Private Office Suite"}))
	before := h.o.Snapshot()

	require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	assert.Equal(t, before, h.o.Snapshot())
	_, _, restores := h.res.counts()
	assert.Zero(t, restores)
	_, saved := h.store.get(store.DefaultKey)
	assert.True(t, saved)
}

func TestRestoreWithoutRecordIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	assert.Equal(t, PhaseIdle, h.o.Snapshot().Phase)
	_, _, restores := h.res.counts()
	assert.Zero(t, restores)
}

func TestRestoreCorruptRecordIsRemoved(t *testing.T) {
	h := newHarness(t, nil)
	h.store.corrupt = true
	require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	assert.False(t, h.store.corrupt)
	assert.Equal(t, PhaseIdle, h.o.Snapshot().Phase)
}

func saveRecord(t *testing.T, h *harness) {
	t.Helper()
	require.NoError(t, h.store.Save(context.Background(), store.DefaultKey,
		model.RestoreRecord{ReservationID: "r-1", WorkspaceType: "Shared Workspace"}))
}

func details(status model.HoldStatus, expiry time.Time) *model.ReservationDetails {
	return &model.ReservationDetails{
		ID:            "r-1",
		WorkspaceID:   "7",
		BookingDate:   "2025-06-01",
		StartTime:     "10:00:00",
		EndTime:       "11:00:00",
		HoldExpiresAt: expiry.Format("2006-01-02 15:04:05"),
		FullName:      "Ada Guest",
		Email:         "ada@example.com",
		GuestPhone:    "555-0100",
		Status:        status,
	}
}

func TestRestorePendingStartsCountdown(t *testing.T) {
	for _, status := range []model.HoldStatus{model.StatusPending, model.StatusPaymentStarted} {
		t.Run(string(status), func(t *testing.T) {
			h := newHarness(t, nil)
			saveRecord(t, h)
			h.res.details = details(status, base.Add(10*time.Minute))

			require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
			snap := h.o.Snapshot()
			assert.Equal(t, PhaseHeld, snap.Phase)
			require.NotNil(t, snap.Hold)
			assert.Equal(t, "555-0100", snap.Hold.Phone)
			assert.Equal(t, status, snap.Hold.Status)
			assert.False(t, snap.PaymentStarted)
			assert.Equal(t, "10:00", snap.TimeRemaining)
			assert.True(t, h.o.countdown.Running())
		})
	}
}

func TestRestoreLapsedPendingIsExpired(t *testing.T) {
	h := newHarness(t, nil)
	saveRecord(t, h)
	h.res.details = details(model.StatusPending, base.Add(-time.Minute))

	require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	snap := h.o.Snapshot()
	assert.Equal(t, PhaseExpired, snap.Phase)
	assert.True(t, snap.Expired)
	assert.False(t, h.o.countdown.Running())
}

func TestRestoreExpiredStatus(t *testing.T) {
	h := newHarness(t, nil)
	saveRecord(t, h)
	h.res.details = details(model.StatusExpired, base.Add(10*time.Minute))

	require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	snap := h.o.Snapshot()
	assert.Equal(t, PhaseExpired, snap.Phase)
	assert.True(t, snap.Expired)
	require.NotNil(t, snap.Hold)
	assert.False(t, h.o.countdown.Running())
}

func TestRestoreAbsentHoldClearsRecord(t *testing.T) {
	h := newHarness(t, nil)
	saveRecord(t, h)

	require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	_, saved := h.store.get(store.DefaultKey)
	assert.False(t, saved)
	assert.Equal(t, PhaseIdle, h.o.Snapshot().Phase)
}

func TestRestoreFinalStatusesClearRecord(t *testing.T) {
	for status, phase := range map[model.HoldStatus]Phase{
		model.StatusConfirmed: PhaseConfirmed,
		model.StatusCancelled: PhaseCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			h := newHarness(t, nil)
			saveRecord(t, h)
			h.res.details = details(status, base.Add(10*time.Minute))

			require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
			assert.Equal(t, phase, h.o.Snapshot().Phase)
			assert.False(t, h.o.Snapshot().HasActiveHold())
			_, saved := h.store.get(store.DefaultKey)
			assert.False(t, saved)
		})
	}
}

func TestRestoreUnknownStatusLeavesState(t *testing.T) {
	h := newHarness(t, nil)
	saveRecord(t, h)
	h.res.details = details("archived", base.Add(10*time.Minute))
	before := h.o.Snapshot()

	require.NoError(t, h.o.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	assert.Equal(t, before, h.o.Snapshot())
	_, saved := h.store.get(store.DefaultKey)
	assert.False(t, saved)
}

func TestRestoreLookupFailure(t *testing.T) {
	h := newHarness(t, nil)
	saveRecord(t, h)
	h.res.restoreErr = errors.New("restore reservation: unreachable")
	before := h.o.Snapshot()

	err := h.o.RestoreFromPersisted(context.Background(), "Shared Workspace")
	assert.Error(t, err)
	assert.Equal(t, before, h.o.Snapshot())
	_, saved := h.store.get(store.DefaultKey)
	assert.True(t, saved)
}

func TestCancelHoldIsOptimistic(t *testing.T) {
	for name, remote := range map[string]model.CancelResult{
		"accepted": {Success: true, FinalStatus: "cancelled"},
		"rejected": {Success: false, Error: "no response from server"},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.res.attempt = held(base.Add(HoldDuration))
			h.res.cancel = remote
			require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))

			res, ok := h.o.CancelHold(context.Background())
			assert.True(t, ok)
			assert.Equal(t, remote, res)

			snap := h.o.Snapshot()
			assert.True(t, snap.Cancelled)
			assert.Equal(t, PhaseCancelled, snap.Phase)
			assert.Empty(t, snap.ReservationError)
			assert.Nil(t, snap.Remaining)
			assert.False(t, h.o.countdown.Running())
			_, saved := h.store.get(store.DefaultKey)
			assert.False(t, saved)
			assert.Equal(t, []string{queue.HoldCreated, queue.HoldCancelled}, h.pub.types())
		})
	}
}

func TestCancelWithoutHoldIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	_, ok := h.o.CancelHold(context.Background())
	assert.False(t, ok)
	_, cancels, _ := h.res.counts()
	assert.Zero(t, cancels)
	assert.False(t, h.o.Snapshot().Cancelled)
}

func TestPaymentStartAndRestart(t *testing.T) {
	h := newHarness(t, nil)
	assert.False(t, h.o.HandlePaymentStart())

	h.res.attempt = held(base.Add(HoldDuration))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	assert.True(t, h.o.HandlePaymentStart())

	snap := h.o.Snapshot()
	assert.Equal(t, PhasePaymentStarted, snap.Phase)
	assert.True(t, snap.PaymentStarted)
	assert.Empty(t, snap.Hold.Status)
	assert.True(t, h.o.countdown.Running())

	h.o.RestartHold()
	h.o.RestartHold()
	snap = h.o.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Hold)
	assert.False(t, snap.PaymentStarted)
	assert.False(t, h.o.countdown.Running())
	_, saved := h.store.get(store.DefaultKey)
	assert.True(t, saved)
}

func TestCloseCancelsLiveHold(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.CancelOnClose = true })
	h.res.attempt = held(base.Add(HoldDuration))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))

	h.o.Close(context.Background())
	_, cancels, _ := h.res.counts()
	assert.Equal(t, 1, cancels)
	assert.False(t, h.o.countdown.Running())
}

func TestCloseSkipsHoldInPayment(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.CancelOnClose = true })
	h.res.attempt = held(base.Add(HoldDuration))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	h.o.HandlePaymentStart()

	h.o.Close(context.Background())
	_, cancels, _ := h.res.counts()
	assert.Zero(t, cancels)
}

func TestCloseWithoutCancelOnClose(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(HoldDuration))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))

	h.o.Close(context.Background())
	_, cancels, _ := h.res.counts()
	assert.Zero(t, cancels)
}

func TestUrgentBelowFiveMinutes(t *testing.T) {
	h := newHarness(t, nil)
	h.res.attempt = held(base.Add(5 * time.Minute))
	require.NoError(t, h.o.AttemptHold(context.Background(), validRequest()))
	assert.False(t, h.o.Snapshot().Urgent)

	h.waitTicker(t)
	h.advance(t, "04:59")
	assert.True(t, h.o.Snapshot().Urgent)
}

func TestFileStoreBackedRestore(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	res := &fakeReservations{attempt: held(base.Add(HoldDuration))}
	clock := clockwork.NewFakeClockAt(base)
	key := store.SessionKey("sess-1")

	first := New(Options{Reservations: res, Store: fs, StoreKey: key, Clock: clock})
	require.NoError(t, first.AttemptHold(context.Background(), validRequest()))
	first.Close(context.Background())

	res.details = details(model.StatusPending, base.Add(HoldDuration))
	second := New(Options{Reservations: res, Store: fs, StoreKey: key, Clock: clock})
	defer second.Close(context.Background())
	require.NoError(t, second.RestoreFromPersisted(context.Background(), "Shared Workspace"))
	assert.Equal(t, PhaseHeld, second.Snapshot().Phase)
	assert.Equal(t, "15:00", second.FormatTimeRemaining())
}
