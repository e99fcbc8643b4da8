// Package session keeps each visitor's page state in memory, keyed by an
// opaque cookie value. Nothing is persisted; idle sessions are dropped.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/page"
)

const (
	DefaultTTL   = 30 * time.Minute
	sweepDivisor = 4
)

type entry struct {
	page     *page.Page
	lastSeen time.Time
	holds    int
}

// Store is safe for concurrent use.
type Store struct {
	newPage func() *page.Page
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore returns a store building pages with newPage.
func NewStore(newPage func() *page.Page, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		newPage:  newPage,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
		sessions: make(map[string]*entry),
	}
}

// Get returns the page for id and marks it used.
func (s *Store) Get(id string) (*page.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.page, true
}

// Hold returns the page for id and keeps the session from expiring until the
// returned release is called. Release is idempotent.
func (s *Store) Hold(id string) (*page.Page, func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, func() {}, false
	}
	e.holds++
	e.lastSeen = s.now()

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.holds--
			e.lastSeen = s.now()
		})
	}
	return e.page, release, true
}

// GetOrCreate returns the page for id, creating a session with a new id when
// id is unknown. created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (string, *page.Page, bool) {
	if p, ok := s.Get(id); ok {
		return id, p, false
	}
	p := s.newPage()
	id = uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &entry{page: p, lastSeen: s.now()}
	s.mu.Unlock()
	s.log.Debug("session created", zap.String("session", shortID(id)))
	return id, p, true
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes and drops every session idle for longer than the TTL and
// returns how many were dropped. Held sessions are never idle.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	var expired []*page.Page

	s.mu.Lock()
	for id, e := range s.sessions {
		if e.holds == 0 && e.lastSeen.Before(cutoff) {
			expired = append(expired, e.page)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, p := range expired {
		p.Close()
	}
	if len(expired) > 0 {
		s.log.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done, then closes every session.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.ttl / sweepDivisor)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// CloseAll closes and drops every session.
func (s *Store) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()
	for _, e := range all {
		e.page.Close()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
