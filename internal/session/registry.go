package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"despesas/internal/cache"
	applog "despesas/internal/log"
)

// CookieName carries the session id in the browser.
const CookieName = "despesas_session"

// Registry holds live sessions. Sessions idle for longer than the TTL, or
// pushed out when the registry is full, are dropped with their data.
type Registry struct {
	sessions *cache.LRU[*Session]
	janitor  *cache.Manager
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(logger *applog.Logger, maxSessions int, ttl time.Duration) *Registry {
	logger = logger.WithComponent(applog.ComponentSession)
	lru := cache.NewLRU[*Session](maxSessions, ttl)
	lru.OnEvict(func(id string, s *Session) {
		logger.Info("Session expired", applog.FieldSessionID, id, "days", s.Store.Len())
	})
	janitor := cache.NewManager()
	janitor.Register(lru)
	return &Registry{sessions: lru, janitor: janitor, ttl: ttl, now: time.Now}
}

// WithClock sets the clock that decides the initial visible month of new
// sessions.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// TTL is the idle lifetime of a session.
func (r *Registry) TTL() time.Duration { return r.ttl }

// Resolve returns the session for id, creating a new one when id is unknown
// or expired. created reports whether a new session was made.
func (r *Registry) Resolve(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := r.sessions.Get(id); ok {
			return s, false
		}
	}
	s = New(uuid.NewString(), r.now())
	r.sessions.Set(s.ID, s)
	return s, true
}

func (r *Registry) Get(id string) (*Session, bool) {
	return r.sessions.Get(id)
}

func (r *Registry) Len() int {
	return r.sessions.Size()
}

// Start sweeps expired sessions every interval until ctx is done.
func (r *Registry) Start(ctx context.Context, interval time.Duration) {
	r.janitor.StartCleanup(ctx, interval)
}

func (r *Registry) Stop() {
	r.janitor.Stop()
}
