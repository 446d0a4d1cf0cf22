package guest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/service"
)

type fakeSender struct {
	mu    sync.Mutex
	res   model.OtpResult
	err   error
	calls []model.OtpRequest
}

func (f *fakeSender) SendGuestOtp(_ context.Context, req model.OtpRequest) (model.OtpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.res, f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func input() Input {
	return Input{Email: "ada@example.com", WorkspaceType: "Shared Workspace", LocationID: "3", BookingDate: "2025-06-01"}
}

func newVerifier(t *testing.T, sender *fakeSender) (*Verifier, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	v := New(Options{Sender: sender, Clock: clock})
	t.Cleanup(v.Close)
	return v, clock
}

func waitTicker(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		clock.BlockUntil(1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cooldown ticker was not started")
	}
}

func tickTo(t *testing.T, v *Verifier, clock *clockwork.FakeClock, want int) {
	t.Helper()
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return v.Snapshot().Cooldown == want }, time.Second, 2*time.Millisecond)
}

func TestRateLimitedCooldownClearsError(t *testing.T) {
	sender := &fakeSender{res: model.OtpResult{Success: false, Error: "OTP recently sent", RetryAfter: 45}}
	v, clock := newVerifier(t, sender)

	require.True(t, v.RequestOtp(context.Background(), input()))
	st := v.Snapshot()
	assert.Equal(t, "OTP recently sent", st.Error)
	assert.Equal(t, 45, st.Cooldown)
	assert.False(t, st.Loading)
	assert.False(t, st.Sent)

	assert.False(t, v.RequestOtp(context.Background(), input()))
	assert.Equal(t, 1, sender.count())

	waitTicker(t, clock)
	for want := 44; want >= 1; want-- {
		tickTo(t, v, clock, want)
		assert.Equal(t, "OTP recently sent", v.Snapshot().Error)
	}
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return v.Snapshot().Error == "" }, time.Second, 2*time.Millisecond)
	assert.Zero(t, v.Snapshot().Cooldown)

	assert.True(t, v.RequestOtp(context.Background(), input()))
	assert.Equal(t, 2, sender.count())
}

func TestOtherErrorsSurviveCooldown(t *testing.T) {
	sender := &fakeSender{res: model.OtpResult{Success: false, Error: "Daily limit reached", RetryAfter: 1}}
	v, clock := newVerifier(t, sender)

	v.RequestOtp(context.Background(), input())
	waitTicker(t, clock)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return v.Snapshot().Cooldown == 0 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "Daily limit reached", v.Snapshot().Error)
}

func TestSuccessStartsCooldown(t *testing.T) {
	sender := &fakeSender{res: model.OtpResult{Success: true}}
	v, _ := newVerifier(t, sender)

	in := input()
	in.StartTime = "10:00"
	require.True(t, v.RequestOtp(context.Background(), in))
	st := v.Snapshot()
	assert.True(t, st.Sent)
	assert.Empty(t, st.Error)
	assert.Equal(t, service.DefaultOtpCooldown, st.Cooldown)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, "shared_workspace", sender.calls[0].WorkspaceType)
	assert.Equal(t, "10:00", sender.calls[0].StartTime)
}

func TestLocalValidation(t *testing.T) {
	sender := &fakeSender{res: model.OtpResult{Success: true, Cooldown: 30}}
	v, _ := newVerifier(t, sender)

	in := input()
	in.WorkspaceType = "Broom Closet"
	v.RequestOtp(context.Background(), in)
	assert.Equal(t, "Invalid workspace type", v.Snapshot().Error)

	in = input()
	in.Email = "not-an-email"
	v.RequestOtp(context.Background(), in)
	assert.Equal(t, "Invalid email address", v.Snapshot().Error)
	assert.Zero(t, sender.count())
	assert.Zero(t, v.Snapshot().Cooldown)
}

func TestServiceErrorIsShown(t *testing.T) {
	sender := &fakeSender{err: service.ErrMissingOtpParameters}
	v, _ := newVerifier(t, sender)

	v.RequestOtp(context.Background(), input())
	st := v.Snapshot()
	assert.Equal(t, service.ErrMissingOtpParameters.Error(), st.Error)
	assert.False(t, st.Loading)
}

func TestReset(t *testing.T) {
	sender := &fakeSender{res: model.OtpResult{Success: true, Cooldown: 30}}
	v, _ := newVerifier(t, sender)

	v.RequestOtp(context.Background(), input())
	v.Reset()
	assert.Equal(t, State{}, v.Snapshot())
	assert.True(t, v.RequestOtp(context.Background(), input()))
}
