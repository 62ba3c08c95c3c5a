package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is the server-side half of a browser session. The cookie carries a
// random token; only its SHA-256 hash is stored, so a database leak does not
// leak usable cookies. Data holds the key/value bindings written by the
// authentication pipeline and handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:se"`

	ID         string     `bun:"id,pk,type:uuid"`
	TokenHash  string     `bun:"token_hash,notnull,unique"`
	Data       TagMap     `bun:"data,type:jsonb,notnull,default:'{}'"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	ExpiresAt  time.Time  `bun:"expires_at,notnull"`
	LastUsedAt *time.Time `bun:"last_used_at"`
}

// Expired reports whether the session lifetime has elapsed.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
