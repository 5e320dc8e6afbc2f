package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sozercan/genome-workbench/internal/render"
)

type entry struct {
	cfg      Config
	last     *render.Result
	lastSeen time.Time
}

// Store keeps sessions in memory only. Idle sessions are dropped by Sweep.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session with default configuration.
func (s *Store) Create() (string, Config) {
	id := uuid.NewString()
	cfg := NewConfig()
	s.mu.Lock()
	s.sessions[id] = &entry{cfg: cfg, lastSeen: s.now()}
	s.mu.Unlock()
	return id, cfg
}

func (s *Store) Get(id string) (Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return Config{}, false
	}
	e.lastSeen = s.now()
	return e.cfg, true
}

// Update replaces the session's Config with edit(current).
func (s *Store) Update(id string, edit func(Config) Config) (Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return Config{}, false
	}
	e.cfg = edit(e.cfg)
	e.lastSeen = s.now()
	return e.cfg, true
}

// SetResult records the last rendered result, replacing the previous one.
func (s *Store) SetResult(id string, res *render.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok {
		e.last = res
	}
}

func (s *Store) Result(id string) (*render.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || e.last == nil {
		return nil, false
	}
	return e.last, true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many went.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("Expired idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}
