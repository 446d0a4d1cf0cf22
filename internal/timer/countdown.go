// Package timer provides the single repeating-timer abstraction used for
// both the hold countdown and the OTP cooldown.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Remaining is the time left on a countdown, floored to whole seconds.
type Remaining struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// String renders the value as zero-padded "MM:SS".
func (r Remaining) String() string { return fmt.Sprintf("%02d:%02d", r.Minutes, r.Seconds) }

// TotalSeconds is Minutes*60 + Seconds.
func (r Remaining) TotalSeconds() int { return r.Minutes*60 + r.Seconds }

// RemainingUntil computes the whole seconds left between now and deadline.
// The second result is false once the floored remainder reaches zero: a
// deadline exactly at now is expired, never "00:00 and still valid".
func RemainingUntil(now, deadline time.Time) (Remaining, bool) {
	secs := int(deadline.Sub(now) / time.Second)
	if secs <= 0 {
		return Remaining{}, false
	}
	return Remaining{Minutes: secs / 60, Seconds: secs % 60}, true
}

// Countdown ticks once per second towards a deadline.  It owns at most one
// ticker; Start while running replaces the old ticker instead of adding a
// second one.
//
// The callbacks run on the ticking goroutine (or inside Start for the
// first computation) while the Countdown lock is held, so they must not
// call back into the Countdown.  OnExpire fires exactly once per started
// deadline.
type Countdown struct {
	clock    clockwork.Clock
	onTick   func(Remaining)
	onExpire func()

	mu        sync.Mutex
	done      chan struct{}
	ticker    clockwork.Ticker
	remaining *Remaining
	expired   bool
}

// NewCountdown builds an idle Countdown.  A nil clock uses the real clock;
// nil callbacks are allowed.
func NewCountdown(clock clockwork.Clock, onTick func(Remaining), onExpire func()) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Countdown{clock: clock, onTick: onTick, onExpire: onExpire}
}

// Start cancels any running ticker, computes the remainder immediately and,
// unless the deadline has already passed, starts ticking every second.
func (c *Countdown) Start(deadline time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.expired = false
	if !c.updateLocked(deadline) {
		return
	}
	done := make(chan struct{})
	t := c.clock.NewTicker(time.Second)
	c.done, c.ticker = done, t
	go c.run(t, done, deadline)
}

// StartFor is Start with a deadline d from now.
func (c *Countdown) StartFor(d time.Duration) {
	c.Start(c.clock.Now().Add(d))
}

// Stop halts the ticker.  The last computed remainder is kept until the
// next Start or Reset.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

// Reset stops the ticker and forgets the remainder and expired flag.
func (c *Countdown) Reset() {
	c.mu.Lock()
	c.stopLocked()
	c.remaining = nil
	c.expired = false
	c.mu.Unlock()
}

// Running reports whether a ticker is active.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}

// State returns the current remainder (nil when none) and expired flag.
func (c *Countdown) State() (*Remaining, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining == nil {
		return nil, c.expired
	}
	r := *c.remaining
	return &r, c.expired
}

func (c *Countdown) run(t clockwork.Ticker, done chan struct{}, deadline time.Time) {
	for {
		select {
		case <-done:
			return
		case <-t.Chan():
			if !c.tick(done, deadline) {
				return
			}
		}
	}
}

func (c *Countdown) tick(done chan struct{}, deadline time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != done {
		return false // replaced or stopped since this tick was queued
	}
	return c.updateLocked(deadline)
}

// updateLocked recomputes the remainder.  It returns false, after stopping
// the ticker and firing onExpire, once the deadline is reached.
func (c *Countdown) updateLocked(deadline time.Time) bool {
	rem, ok := RemainingUntil(c.clock.Now(), deadline)
	if !ok {
		c.remaining = nil
		c.expired = true
		c.stopLocked()
		if c.onExpire != nil {
			c.onExpire()
		}
		return false
	}
	c.remaining = &rem
	if c.onTick != nil {
		c.onTick(rem)
	}
	return true
}

func (c *Countdown) stopLocked() {
	if c.done == nil {
		return
	}
	close(c.done)
	c.ticker.Stop()
	c.done, c.ticker = nil, nil
}
