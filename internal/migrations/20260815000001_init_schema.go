package migrations

import (
	"context"
	"fmt"

	"github.com/corralworks/corral/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260815000001, down_20260815000001)
}

// up_20260815000001 initializes the full database schema
func up_20260815000001(ctx context.Context, db *bun.DB) error {
	// 1. Create admins table
	fmt.Print(" [up] creating admins table...")
	_, err := db.NewCreateTable().
		Model((*models.Admin)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admins table: %w", err)
	}
	fmt.Println(" OK")

	// 2. Create sessions table
	fmt.Print(" [up] creating sessions table...")
	_, err = db.NewCreateTable().
		Model((*models.Session)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`)
	if err != nil {
		return fmt.Errorf("failed to create index on expires_at: %w", err)
	}
	fmt.Println(" OK")

	// 3. Create profile tables before nodes so node FKs can reference them
	fmt.Print(" [up] creating software_profiles table...")
	_, err = db.NewCreateTable().
		Model((*models.SoftwareProfile)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create software_profiles table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating hardware_profiles table...")
	_, err = db.NewCreateTable().
		Model((*models.HardwareProfile)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create hardware_profiles table: %w", err)
	}
	fmt.Println(" OK")

	// 4. Create nodes table
	fmt.Print(" [up] creating nodes table...")
	q := db.NewCreateTable().
		Model((*models.Node)(nil)).
		IfNotExists()

	// For SQLite, define FKs during table creation
	if IsSQLite(db) {
		q = q.ForeignKey(`(software_profile_id) REFERENCES software_profiles(id) ON DELETE SET NULL`)
		q = q.ForeignKey(`(hardware_profile_id) REFERENCES hardware_profiles(id) ON DELETE SET NULL`)
	}
	_, err = q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create nodes table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_nodes_state ON nodes(state)`)
	if err != nil {
		return fmt.Errorf("failed to create index on state: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_nodes_software_profile ON nodes(software_profile_id)`)
	if err != nil {
		return fmt.Errorf("failed to create index on software_profile_id: %w", err)
	}

	// Tag lookups filter server-side only on PostgreSQL; GIN makes the
	// containment queries usable at scale.
	if IsPostgreSQL(db) {
		_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_nodes_tags_gin ON nodes USING gin (tags jsonb_path_ops)`)
		if err != nil {
			return fmt.Errorf("failed to create GIN index on tags: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260815000001 drops the full schema in dependency order
func down_20260815000001(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{
		(*models.Node)(nil),
		(*models.SoftwareProfile)(nil),
		(*models.HardwareProfile)(nil),
		(*models.Session)(nil),
		(*models.Admin)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
