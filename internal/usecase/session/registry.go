package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/metrics"
	"github.com/kailas-cloud/geolocator/internal/usecase/coordinator"
)

// Factory builds a coordinator for a new session.
type Factory func() *coordinator.Coordinator

// Session is one live coordinator and its identity.
type Session struct {
	ID          string
	CreatedAt   time.Time
	Coordinator *coordinator.Coordinator

	lastSeen atomic.Int64 // unix nanos of the last lookup
}

// LastSeen returns the later of the last lookup and the last state change.
func (s *Session) LastSeen() time.Time {
	seen := time.Unix(0, s.lastSeen.Load()).UTC()
	if updated := s.Coordinator.Snapshot().UpdatedAt; updated.After(seen) {
		return updated
	}
	return seen
}

// Registry owns one coordinator per presentation session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	idle     time.Duration
	factory  Factory
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistry creates a registry. max <= 0 means unbounded.
func NewRegistry(factory Factory, maxSessions int, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		max:      maxSessions,
		factory:  factory,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithIdleTimeout enables eviction of sessions untouched for d.
// d <= 0 keeps sessions until they are deleted.
func (r *Registry) WithIdleTimeout(d time.Duration) *Registry {
	r.idle = d
	return r
}

// Create starts a new session with a random id. When the registry is full,
// idle sessions are evicted first.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	var evicted []*Session
	if r.max > 0 && len(r.sessions) >= r.max {
		evicted = r.evictIdleLocked()
	}
	if r.max > 0 && len(r.sessions) >= r.max {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: limit %d", domain.ErrTooManySessions, r.max)
	}

	s := &Session{
		ID:          uuid.NewString(),
		CreatedAt:   r.now(),
		Coordinator: r.factory(),
	}
	s.lastSeen.Store(s.CreatedAt.UnixNano())
	r.sessions[s.ID] = s
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	r.closeEvicted(evicted)
	r.logger.Debug("Session created", zap.String("session_id", s.ID))
	return s, nil
}

// Get returns the session with the given id and marks it as seen.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.lastSeen.Store(r.now().UnixNano())
	return s, nil
}

// Delete removes a session and cancels its in-flight search.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		metrics.SessionsActive.Set(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.Coordinator.Cancel()
	r.logger.Debug("Session deleted", zap.String("session_id", id))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts every idle session and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	evicted := r.evictIdleLocked()
	r.mu.Unlock()
	r.closeEvicted(evicted)
	return len(evicted)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("Idle sessions evicted", zap.Int("count", n))
			}
		}
	}
}

// evictIdleLocked removes sessions idle past the timeout. Sessions with a
// search in flight are kept. Caller holds r.mu.
func (r *Registry) evictIdleLocked() []*Session {
	if r.idle <= 0 {
		return nil
	}
	cutoff := r.now().Add(-r.idle)
	var evicted []*Session
	for id, s := range r.sessions {
		if s.Coordinator.Snapshot().Pending || s.LastSeen().After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		evicted = append(evicted, s)
	}
	if len(evicted) > 0 {
		metrics.SessionsActive.Set(float64(len(r.sessions)))
	}
	return evicted
}

func (r *Registry) closeEvicted(evicted []*Session) {
	for _, s := range evicted {
		s.Coordinator.Cancel()
		metrics.SessionsEvictedTotal.Inc()
		r.logger.Debug("Session evicted", zap.String("session_id", s.ID))
	}
}
