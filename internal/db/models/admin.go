package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Admin represents an authentication principal with API access.
// The PasswordHash field stores the bcrypt hash for username/password login;
// JWT-bearer logins reference the same record by username.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:a"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Description  string    `bun:"description"`
	Attributes   TagMap    `bun:"attributes,type:jsonb,notnull,default:'{}'"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (a *Admin) ValidateForCreate() error {
	if a.Username == "" {
		return errors.New("username is required")
	}
	if len(a.Username) > 128 {
		return errors.New("username exceeds maximum length")
	}
	if a.PasswordHash == "" {
		return errors.New("password_hash is required")
	}
	return nil
}
