package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corralworks/corral/cmd/admins"
	"github.com/corralworks/corral/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "corralapi",
	Short: "Corral API server for cluster inventory management",
	Long: `Corral API Server manages cluster node and profile inventory.
It exposes an authenticated HTTP REST API plus a websocket event feed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().String("server-url", "", "Server base URL (env: SERVER_URL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	rootCmd.AddCommand(admins.AdminsCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
