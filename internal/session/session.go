package session

import (
	"context"
	"sync"

	"github.com/corralworks/corral/internal/db/models"
)

// Session is the per-request handle on one logical browser session. Reads
// and writes go to the in-memory data map; the Manager persists the map back
// to the store at request end when anything changed.
//
// A Session instance belongs to one request. Concurrent requests carrying the
// same cookie each load their own instance; the Manager serializes the final
// writes per session record.
type Session struct {
	mu    sync.Mutex
	rec   *models.Session
	token string
	dirty bool
	fresh bool
}

// New creates a detached session seeded with the given data. Detached
// sessions are not backed by the store and never persist; they serve
// call sites that need session semantics without a cookie.
func New(data map[string]string) *Session {
	rec := &models.Session{Data: models.TagMap{}}
	for k, v := range data {
		rec.Data[k] = v
	}
	return &Session{rec: rec}
}

// ID returns the session record identifier, or "" for a detached session.
func (s *Session) ID() string {
	if s.rec == nil {
		return ""
	}
	return s.rec.ID
}

// Token returns the raw cookie token. Only set for sessions created during
// this request; loaded sessions never see the raw token again.
func (s *Session) Token() string { return s.token }

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool { return s.fresh }

// Get returns the value bound to key and whether the key is present.
func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rec.Data[key]
	return v, ok
}

// Set binds value to key.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.rec.Data[key]; ok && v == value {
		return
	}
	s.rec.Data[key] = value
	s.dirty = true
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rec.Data[key]; !ok {
		return
	}
	delete(s.rec.Data, key)
	s.dirty = true
}

// Dirty reports whether the data map changed since load.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// snapshot returns the backing record for persistence, or nil for detached
// sessions.
func (s *Session) snapshot() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

type sessionContextKey struct{}

// WithSession stores the request's session handle on the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext retrieves the request's session handle, or nil when the
// session middleware did not run.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey{}).(*Session)
	return s
}
