package admins

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corralworks/corral/internal/db/bunx"
)

var (
	usernameFlag    string
	passwordFlag    string
	descriptionFlag string
	stdinFlag       bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new admin account",
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

		rec, err := store.Create(cmd.Context(), usernameFlag, password, descriptionFlag)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		fmt.Printf("Created admin %q (id %d)\n", rec.Username, rec.ID)
		return nil
	},
}

// resolvePassword returns the password from --password or, with --stdin,
// prompts for it on standard input.
func resolvePassword() (string, error) {
	password := passwordFlag
	if stdinFlag {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("Enter password: ")
		if scanner.Scan() {
			password = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
	}
	if password == "" {
		return "", fmt.Errorf("password is required (use --password or --stdin)")
	}
	return password, nil
}

func init() {
	createCmd.Flags().StringVar(&usernameFlag, "username", "", "Username for the new admin")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the new admin")
	createCmd.Flags().StringVar(&descriptionFlag, "description", "", "Optional description")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read the password from stdin")
}
