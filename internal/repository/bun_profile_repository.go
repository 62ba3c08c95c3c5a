package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/corralworks/corral/internal/db/models"
	"github.com/uptrace/bun"
)

// BunSoftwareProfileRepository implements SoftwareProfileRepository using Bun ORM
type BunSoftwareProfileRepository struct {
	db *bun.DB
}

// NewBunSoftwareProfileRepository creates a new Bun-based software profile repository
func NewBunSoftwareProfileRepository(db *bun.DB) *BunSoftwareProfileRepository {
	return &BunSoftwareProfileRepository{db: db}
}

// Create inserts a new software profile
func (r *BunSoftwareProfileRepository) Create(ctx context.Context, profile *models.SoftwareProfile) error {
	if err := profile.ValidateForCreate(); err != nil {
		return fmt.Errorf("validate software profile: %w", err)
	}
	_, err := r.db.NewInsert().
		Model(profile).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create software profile: %w", err)
	}
	return nil
}

// GetByName retrieves a software profile by its unique name
func (r *BunSoftwareProfileRepository) GetByName(ctx context.Context, name string) (*models.SoftwareProfile, error) {
	profile := new(models.SoftwareProfile)
	err := r.db.NewSelect().
		Model(profile).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("software profile %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get software profile: %w", err)
	}
	return profile, nil
}

// Update updates an existing software profile
func (r *BunSoftwareProfileRepository) Update(ctx context.Context, profile *models.SoftwareProfile) error {
	profile.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(profile).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update software profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("software profile %d: %w", profile.ID, ErrNotFound)
	}

	return nil
}

// List retrieves all software profiles
func (r *BunSoftwareProfileRepository) List(ctx context.Context) ([]models.SoftwareProfile, error) {
	var profiles []models.SoftwareProfile
	err := r.db.NewSelect().
		Model(&profiles).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list software profiles: %w", err)
	}
	return profiles, nil
}

// Delete removes a software profile
func (r *BunSoftwareProfileRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.SoftwareProfile)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete software profile: %w", err)
	}
	return nil
}

// BunHardwareProfileRepository implements HardwareProfileRepository using Bun ORM
type BunHardwareProfileRepository struct {
	db *bun.DB
}

// NewBunHardwareProfileRepository creates a new Bun-based hardware profile repository
func NewBunHardwareProfileRepository(db *bun.DB) *BunHardwareProfileRepository {
	return &BunHardwareProfileRepository{db: db}
}

// Create inserts a new hardware profile
func (r *BunHardwareProfileRepository) Create(ctx context.Context, profile *models.HardwareProfile) error {
	if err := profile.ValidateForCreate(); err != nil {
		return fmt.Errorf("validate hardware profile: %w", err)
	}
	_, err := r.db.NewInsert().
		Model(profile).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create hardware profile: %w", err)
	}
	return nil
}

// GetByName retrieves a hardware profile by its unique name
func (r *BunHardwareProfileRepository) GetByName(ctx context.Context, name string) (*models.HardwareProfile, error) {
	profile := new(models.HardwareProfile)
	err := r.db.NewSelect().
		Model(profile).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("hardware profile %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get hardware profile: %w", err)
	}
	return profile, nil
}

// Update updates an existing hardware profile
func (r *BunHardwareProfileRepository) Update(ctx context.Context, profile *models.HardwareProfile) error {
	profile.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(profile).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update hardware profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("hardware profile %d: %w", profile.ID, ErrNotFound)
	}

	return nil
}

// List retrieves all hardware profiles
func (r *BunHardwareProfileRepository) List(ctx context.Context) ([]models.HardwareProfile, error) {
	var profiles []models.HardwareProfile
	err := r.db.NewSelect().
		Model(&profiles).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hardware profiles: %w", err)
	}
	return profiles, nil
}

// Delete removes a hardware profile
func (r *BunHardwareProfileRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.HardwareProfile)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete hardware profile: %w", err)
	}
	return nil
}
