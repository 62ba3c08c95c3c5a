package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/corralworks/corral/internal/db/models"
	"github.com/uptrace/bun"
)

// BunNodeRepository implements NodeRepository using Bun ORM
type BunNodeRepository struct {
	db *bun.DB
}

// NewBunNodeRepository creates a new Bun-based node repository
func NewBunNodeRepository(db *bun.DB) *BunNodeRepository {
	return &BunNodeRepository{db: db}
}

// Create inserts a new node
func (r *BunNodeRepository) Create(ctx context.Context, node *models.Node) error {
	if err := node.ValidateForCreate(); err != nil {
		return fmt.Errorf("validate node: %w", err)
	}
	_, err := r.db.NewInsert().
		Model(node).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	return nil
}

// GetByID retrieves a node by its numeric ID
func (r *BunNodeRepository) GetByID(ctx context.Context, id int64) (*models.Node, error) {
	node := new(models.Node)
	err := r.db.NewSelect().
		Model(node).
		Relation("SoftwareProfile").
		Relation("HardwareProfile").
		Where("n.id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("node %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get node by ID: %w", err)
	}
	return node, nil
}

// GetByName retrieves a node by its unique name
func (r *BunNodeRepository) GetByName(ctx context.Context, name string) (*models.Node, error) {
	node := new(models.Node)
	err := r.db.NewSelect().
		Model(node).
		Relation("SoftwareProfile").
		Relation("HardwareProfile").
		Where("n.name = ?", name).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("node %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get node by name: %w", err)
	}
	return node, nil
}

// Update updates an existing node and refreshes last_update
func (r *BunNodeRepository) Update(ctx context.Context, node *models.Node) error {
	node.LastUpdate = time.Now()
	result, err := r.db.NewUpdate().
		Model(node).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update node: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("node %d: %w", node.ID, ErrNotFound)
	}

	return nil
}

// List retrieves all nodes with their profile relations
func (r *BunNodeRepository) List(ctx context.Context) ([]models.Node, error) {
	var nodes []models.Node
	err := r.db.NewSelect().
		Model(&nodes).
		Relation("SoftwareProfile").
		Relation("HardwareProfile").
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return nodes, nil
}

// ListBySoftwareProfile retrieves all nodes attached to a software profile
func (r *BunNodeRepository) ListBySoftwareProfile(ctx context.Context, profileID int64) ([]models.Node, error) {
	var nodes []models.Node
	err := r.db.NewSelect().
		Model(&nodes).
		Where("software_profile_id = ?", profileID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes by software profile: %w", err)
	}
	return nodes, nil
}

// Delete removes a node
func (r *BunNodeRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Node)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	return nil
}
