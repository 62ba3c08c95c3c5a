package admins

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/corralworks/corral/internal/db/bunx"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		records, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list admins: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tDESCRIPTION\tCREATED_AT")
		for _, rec := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				rec.ID,
				rec.Username,
				rec.Description,
				rec.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		w.Flush()

		return nil
	},
}
