// cmd/tools/dirctl/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"business-directory/internal/common/config"
	"business-directory/internal/common/database"
	"business-directory/internal/common/logger"
)

var (
	configPath string
	verbose    bool

	zapLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dirctl",
	Short: "Maintenance commands for the business directory",
	Long: `dirctl runs one-off maintenance against the directory stores:
schema migrations, operator accounts, search reindexing and the
dashboard section catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		zapLog = logger.New(level, "console")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zapLog != nil {
			_ = zapLog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml lookup)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(migrateCmd, seedAdminCmd, reindexCmd, sectionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// openPostgres loads the config and connects to the directory database.
func openPostgres(ctx context.Context) (*config.Config, *database.PostgresClient, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return cfg, pg, nil
}
