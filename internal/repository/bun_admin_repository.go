package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/corralworks/corral/internal/db/models"
	"github.com/uptrace/bun"
)

// BunAdminRepository implements AdminRepository using Bun ORM
type BunAdminRepository struct {
	db *bun.DB
}

// NewBunAdminRepository creates a new Bun-based admin repository
func NewBunAdminRepository(db *bun.DB) *BunAdminRepository {
	return &BunAdminRepository{db: db}
}

// Create inserts a new admin into the database
func (r *BunAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	_, err := r.db.NewInsert().
		Model(admin).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// GetByID retrieves an admin by their numeric ID
func (r *BunAdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	admin := new(models.Admin)
	err := r.db.NewSelect().
		Model(admin).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("admin %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get admin by ID: %w", err)
	}
	return admin, nil
}

// GetByUsername retrieves an admin by their login name.
// This is the primary lookup method for authentication.
func (r *BunAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	admin := new(models.Admin)
	err := r.db.NewSelect().
		Model(admin).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("admin %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return admin, nil
}

// Update updates an existing admin
func (r *BunAdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	admin.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(admin).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("admin %d: %w", admin.ID, ErrNotFound)
	}

	return nil
}

// SetPasswordHash updates the stored bcrypt hash for an admin's credentials.
func (r *BunAdminRepository) SetPasswordHash(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Admin)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	return nil
}

// List retrieves all admins
func (r *BunAdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	err := r.db.NewSelect().
		Model(&admins).
		Order("username ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// Delete removes an admin
func (r *BunAdminRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Admin)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return nil
}
