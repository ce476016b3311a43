package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengzang/retention-backend-go/internal/database"
)

type MigrateCmd struct{}

func NewMigrateCmd() *MigrateCmd {
	return &MigrateCmd{}
}

func (c *MigrateCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			manager := database.NewMigrationManager(a.DB, database.Migrations(), a.Logger)
			count, err := manager.RunMigrations(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			a.Logger.Info("migrations complete", "applied", count)
			return nil
		},
	}
}
