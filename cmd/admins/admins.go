package admins

import (
	"context"
	"fmt"

	"github.com/corralworks/corral/internal/config"
	"github.com/corralworks/corral/internal/db/bunx"
	"github.com/corralworks/corral/internal/repository"
	"github.com/corralworks/corral/internal/services/admin"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

// AdminsCmd is the parent command for admin account operations
var AdminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage admin accounts",
	Long:  `Commands for managing admin accounts directly from the server.`,
}

func init() {
	AdminsCmd.AddCommand(createCmd)
	AdminsCmd.AddCommand(listCmd)
	AdminsCmd.AddCommand(passwdCmd)
}

// openStore loads configuration, connects to the database, and builds the
// admin store. The caller must close the returned db handle.
func openStore(_ context.Context) (*bun.DB, *admin.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := admin.NewStore(repository.NewBunAdminRepository(db))
	if err != nil {
		bunx.Close(db)
		return nil, nil, fmt.Errorf("failed to create admin store: %w", err)
	}
	return db, store, nil
}
