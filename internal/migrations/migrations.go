package migrations

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry all migration files register into via init().
var Migrations = migrate.NewMigrations()

// IsSQLite reports whether the migration target is SQLite. Some DDL (foreign
// keys, JSON indexes) differs between the two supported dialects.
func IsSQLite(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.SQLite
}

// IsPostgreSQL reports whether the migration target is PostgreSQL.
func IsPostgreSQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}
