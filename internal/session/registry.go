// Package session keeps one booking session per browser: a hold
// orchestrator, an OTP verifier and the key of its restore record.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/guest"
	"github.com/iliyamo/cowork-booking/internal/hold"
	"github.com/iliyamo/cowork-booking/internal/queue"
	"github.com/iliyamo/cowork-booking/internal/store"
)

// Session is one guest's booking flow.
type Session struct {
	ID       string
	StoreKey string
	Hold     *hold.Orchestrator
	OTP      *guest.Verifier

	lastSeen time.Time
}

// Deps are shared by every session the registry creates.
type Deps struct {
	Reservations  hold.Reservations
	OTP           guest.Sender
	Store         store.Store
	Publisher     queue.Publisher
	Clock         clockwork.Clock
	Log           *logrus.Entry
	To12Hour      bool
	CancelOnClose bool
}

// Registry maps session ids to sessions.  Sessions idle for longer than
// the idle TTL are closed by Sweep.
type Registry struct {
	deps    Deps
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Log == nil {
		deps.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}
	return &Registry{deps: deps, idleTTL: idleTTL, sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it when unknown.  Ids
// that are not UUIDs are replaced by a fresh one; callers must use the
// returned session's ID.
func (r *Registry) GetOrCreate(id string) *Session {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.deps.Clock.Now()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = now
		return s
	}
	s := r.build(id)
	s.lastSeen = now
	r.sessions[id] = s
	return s
}

// Get looks a session up without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.deps.Clock.Now()
	}
	return s, ok
}

func (r *Registry) build(id string) *Session {
	log := r.deps.Log.WithField("session_id", id)
	key := store.SessionKey(id)
	return &Session{
		ID:       id,
		StoreKey: key,
		Hold: hold.New(hold.Options{
			Reservations:  r.deps.Reservations,
			Store:         r.deps.Store,
			StoreKey:      key,
			Publisher:     r.deps.Publisher,
			Clock:         r.deps.Clock,
			Log:           log,
			SessionID:     id,
			To12Hour:      r.deps.To12Hour,
			CancelOnClose: r.deps.CancelOnClose,
		}),
		OTP: guest.New(guest.Options{Sender: r.deps.OTP, Clock: r.deps.Clock, Log: log}),
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove closes and forgets a session.
func (r *Registry) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		closeSession(ctx, s)
	}
}

// Sweep closes sessions idle for longer than the idle TTL and returns how
// many it closed.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.deps.Clock.Now().Add(-r.idleTTL)
	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		closeSession(ctx, s)
	}
	if len(stale) > 0 {
		r.deps.Log.WithField("closed", len(stale)).Info("swept idle sessions")
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := r.deps.Clock.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			r.Sweep(ctx)
		}
	}
}

// Close closes every session.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		closeSession(ctx, s)
	}
}

func closeSession(ctx context.Context, s *Session) {
	s.Hold.Close(ctx)
	s.OTP.Close()
}
