package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-lookup/internal/present"
)

var (
	// ErrNotFound is returned when no session exists for a given ID.
	ErrNotFound = errors.New("session not found")

	// ErrFull is returned by Create when MaxSessions sessions are live.
	ErrFull = errors.New("session limit reached")

	// ErrStaleTicket is returned when a newer search has started on the
	// session since the ticket was issued.
	ErrStaleTicket = errors.New("search superseded by a newer one")
)

// State is what a session's page currently shows.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Session is a copy of one session's display state.
type Session struct {
	ID        string        `json:"id"`
	State     State         `json:"state"`
	Query     string        `json:"query,omitempty"`
	View      *present.View `json:"view,omitempty"`
	Message   string        `json:"message,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Ticket identifies one search on a session. Only the latest ticket may
// complete or fail the session.
type Ticket struct {
	SessionID string
	Seq       uint64
}

type entry struct {
	session  Session
	seq      uint64
	lastSeen time.Time
}

// MemoryStore is a concurrency-safe in-memory store of session view state.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session ID
	data map[string]*entry

	maxSessions int           // 0 = unlimited
	ttl         time.Duration // idle time before Prune drops a session; 0 = never
	clock       clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxSessions is <= 0, it is treated as unlimited.
func NewMemoryStore(maxSessions int, ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		data:        make(map[string]*entry),
		maxSessions: maxSessions,
		ttl:         ttl,
		clock:       clock,
	}
}

// Create starts an idle session with a fresh ID.
func (s *MemoryStore) Create() (Session, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.data) >= s.maxSessions {
		return Session{}, ErrFull
	}

	e := &entry{
		session: Session{
			ID:        uuid.NewString(),
			State:     StateIdle,
			UpdatedAt: now,
		},
		lastSeen: now,
	}
	s.data[e.session.ID] = e
	return e.session, nil
}

// Get returns the session and marks it as recently used.
func (s *MemoryStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	e.lastSeen = s.clock.Now()
	return e.session, nil
}

// Begin moves the session to loading for query and issues a ticket that
// supersedes every earlier one.
func (s *MemoryStore) Begin(id, query string) (Ticket, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	e.seq++
	e.session.State = StateLoading
	e.session.Query = query
	e.session.UpdatedAt = now
	e.lastSeen = now
	return Ticket{SessionID: id, Seq: e.seq}, nil
}

// Complete shows view on the session if t is still the latest ticket.
func (s *MemoryStore) Complete(t Ticket, view present.View) (Session, error) {
	return s.finish(t, func(sess *Session) {
		sess.State = StateReady
		sess.View = &view
		sess.Message = ""
	})
}

// Fail shows message on the session if t is still the latest ticket. Any
// earlier view is dropped.
func (s *MemoryStore) Fail(t Ticket, message string) (Session, error) {
	return s.finish(t, func(sess *Session) {
		sess.State = StateError
		sess.View = nil
		sess.Message = message
	})
}

func (s *MemoryStore) finish(t Ticket, apply func(*Session)) (Session, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[t.SessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	if t.Seq != e.seq {
		return e.session, ErrStaleTicket
	}
	apply(&e.session)
	e.session.UpdatedAt = now
	e.lastSeen = now
	return e.session, nil
}

// Prune removes sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a search in flight are kept for twice the TTL.
func (s *MemoryStore) Prune() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.clock.Now()
	cutoff := now.Add(-s.ttl)
	loadingCutoff := now.Add(-2 * s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.data {
		limit := cutoff
		if e.session.State == StateLoading {
			limit = loadingCutoff
		}
		if e.lastSeen.Before(limit) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
