package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command, which applies all pending
// schema migrations.
func NewMigrateCmd(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			path := dir
			if path == "" {
				path = a.cfg.Database.MigrationPath
			}
			if err := a.conn.RunMigrations(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default from config)")
	return cmd
}
