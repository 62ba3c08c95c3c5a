package admins

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corralworks/corral/internal/db/bunx"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change an admin's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		password, err := resolvePassword()
		if err != nil {
			return err
		}

		db, store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		if err := store.SetPassword(cmd.Context(), usernameFlag, password); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}

		fmt.Printf("Password updated for %q\n", usernameFlag)
		return nil
	},
}

func init() {
	passwdCmd.Flags().StringVar(&usernameFlag, "username", "", "Username of the admin")
	passwdCmd.Flags().StringVar(&passwordFlag, "password", "", "New password")
	passwdCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read the password from stdin")
}
