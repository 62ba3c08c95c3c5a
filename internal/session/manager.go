package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/corralworks/corral/internal/db/bunx"
	"github.com/corralworks/corral/internal/db/models"
	"github.com/corralworks/corral/internal/repository"
)

const (
	// CookieName is the session cookie issued to clients.
	CookieName = "corral.session"

	// DefaultTTL is the default session lifetime.
	DefaultTTL = 12 * time.Hour

	// TokenLength is the length of generated session tokens in bytes.
	TokenLength = 32

	// lockStripes is the number of mutexes session saves are sharded over.
	lockStripes = 64
)

// Manager loads and persists sessions against the session repository and
// owns the cookie exchange with clients.
//
// Saves for the same session record are serialized through a striped lock so
// two requests racing on one cookie cannot interleave their read-modify-write
// against the store.
type Manager struct {
	sessions repository.SessionRepository
	ttl      time.Duration
	secure   bool

	locks [lockStripes]sync.Mutex
}

// NewManager creates a session manager. A non-positive ttl falls back to
// DefaultTTL. secure controls the cookie's Secure attribute.
func NewManager(sessions repository.SessionRepository, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{sessions: sessions, ttl: ttl, secure: secure}
}

// GenerateToken generates a cryptographically secure random session token.
// Returns: token (hex string), token hash (SHA256 hex), error
func GenerateToken() (string, string, error) {
	tokenBytes := make([]byte, TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("generate random token: %w", err)
	}

	token := hex.EncodeToString(tokenBytes)
	return token, HashToken(token), nil
}

// HashToken hashes a session token for storage/lookup.
// Returns SHA256 hex hash.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Load resolves the request's session from its cookie. A missing cookie, an
// unknown token, or an expired record all produce a fresh session; the
// caller never sees an error for a bad cookie, only for store failures.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return m.create()
	}

	rec, err := m.sessions.GetByTokenHash(ctx, HashToken(cookie.Value))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return m.create()
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if rec.Expired(time.Now()) {
		if err := m.sessions.Delete(ctx, rec.ID); err != nil {
			log.Printf("session: failed to delete expired session %s: %v", rec.ID, err)
		}
		return m.create()
	}

	if rec.Data == nil {
		rec.Data = models.TagMap{}
	}
	return &Session{rec: rec}, nil
}

// create builds a new unsaved session with a fresh token. The record is only
// written to the store if the request dirties it.
func (m *Manager) create() (*Session, error) {
	token, tokenHash, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &models.Session{
		ID:        bunx.NewUUIDv7(),
		TokenHash: tokenHash,
		Data:      models.TagMap{},
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	return &Session{rec: rec, token: token, fresh: true}, nil
}

// Save persists a dirty session. New sessions are inserted, existing ones
// updated. Clean sessions are left untouched.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s == nil || !s.Dirty() {
		return nil
	}

	rec := s.snapshot()
	if rec == nil || rec.ID == "" {
		// Detached session, nothing to persist.
		return nil
	}

	lock := &m.locks[stripeFor(rec.ID)]
	lock.Lock()
	defer lock.Unlock()

	if s.fresh {
		if err := m.sessions.Create(ctx, rec); err != nil {
			return fmt.Errorf("save new session: %w", err)
		}
		return nil
	}
	if err := m.sessions.Update(ctx, rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy removes the session record and expires the client cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s == nil || s.ID() == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, s.ID()); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	// Prevent the middleware from resurrecting the record on save.
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware loads the session before the handler runs and persists it
// afterwards. New sessions that were written to get their cookie set.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := m.Load(ctx, r)
			if err != nil {
				log.Printf("session: load failed: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			// The cookie must be issued before the handler writes the
			// response; an unused session cookie for a clean new session is
			// harmless since no record backs it.
			if sess.IsNew() {
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    sess.Token(),
					Path:     "/",
					Expires:  time.Now().Add(m.ttl),
					HttpOnly: true,
					Secure:   m.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))

			if err := m.Save(ctx, sess); err != nil {
				log.Printf("session: save failed for %s: %v", sess.ID(), err)
			}

			if !sess.IsNew() && sess.Dirty() {
				// Touch last_used for returning sessions, best effort.
				go func(id string) {
					touchCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := m.sessions.UpdateLastUsed(touchCtx, id); err != nil {
						log.Printf("session: failed to update last_used: %v", err)
					}
				}(sess.ID())
			}
		})
	}
}

func stripeFor(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % lockStripes)
}
