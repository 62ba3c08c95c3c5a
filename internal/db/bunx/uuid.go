package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary
// keys. Time ordering keeps inserts append-mostly in the primary key index,
// and works identically on PostgreSQL and SQLite (no gen_random_uuid()
// dependency).
//
// Panics if UUID generation fails, which only happens when the entropy
// source is broken; nothing else in the process would work either.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
