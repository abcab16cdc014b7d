package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"business-directory/internal/common/database"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or revert the embedded schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := database.MigrationDirection(args[0])
		if direction == database.MigrateDown && migrateSteps == 0 {
			return fmt.Errorf("migrate down needs --steps; use a positive count")
		}

		_, pg, err := openPostgres(cmd.Context())
		if err != nil {
			return err
		}
		defer pg.Close()

		version, err := pg.Migrate(direction, migrateSteps)
		if err != nil {
			return err
		}
		zapLog.Info("migration complete", zap.String("direction", string(direction)), zap.Uint("version", version))
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of migrations to apply (up: 0 means all)")
}
