package repository

import (
	"context"
	"errors"

	"github.com/corralworks/corral/internal/db/models"
)

// ErrNotFound is wrapped by repositories when a lookup matches no row.
// Callers test with errors.Is.
var ErrNotFound = errors.New("not found")

// AdminRepository exposes persistence operations for authentication
// principals.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
	SetPasswordHash(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context) ([]models.Admin, error)
	Delete(ctx context.Context, id int64) error
}

// SessionRepository exposes persistence operations for server-side sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	UpdateLastUsed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) error
}

// NodeRepository exposes persistence operations for cluster nodes.
type NodeRepository interface {
	Create(ctx context.Context, node *models.Node) error
	GetByID(ctx context.Context, id int64) (*models.Node, error)
	GetByName(ctx context.Context, name string) (*models.Node, error)
	Update(ctx context.Context, node *models.Node) error
	List(ctx context.Context) ([]models.Node, error)
	ListBySoftwareProfile(ctx context.Context, profileID int64) ([]models.Node, error)
	Delete(ctx context.Context, id int64) error
}

// SoftwareProfileRepository exposes persistence operations for software
// profiles.
type SoftwareProfileRepository interface {
	Create(ctx context.Context, profile *models.SoftwareProfile) error
	GetByName(ctx context.Context, name string) (*models.SoftwareProfile, error)
	Update(ctx context.Context, profile *models.SoftwareProfile) error
	List(ctx context.Context) ([]models.SoftwareProfile, error)
	Delete(ctx context.Context, id int64) error
}

// HardwareProfileRepository exposes persistence operations for hardware
// profiles.
type HardwareProfileRepository interface {
	Create(ctx context.Context, profile *models.HardwareProfile) error
	GetByName(ctx context.Context, name string) (*models.HardwareProfile, error)
	Update(ctx context.Context, profile *models.HardwareProfile) error
	List(ctx context.Context) ([]models.HardwareProfile, error)
	Delete(ctx context.Context, id int64) error
}
