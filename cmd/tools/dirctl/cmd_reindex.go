package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"business-directory/internal/common/database"
	"business-directory/internal/common/logger"
	"business-directory/internal/directory"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Copy every company from PostgreSQL into the search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, pg, err := openPostgres(ctx)
		if err != nil {
			return err
		}
		defer pg.Close()

		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := es.Ping(ctx); err != nil {
			return err
		}
		index := directory.NewSearchIndex(es, cfg.Directory.SearchIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure index %s: %w", cfg.Directory.SearchIndex, err)
		}

		svc := directory.NewService(directory.Deps{
			Store:  directory.NewRepository(pg.DB),
			Index:  index,
			Logger: logger.NewZapAdapter(zapLog),
		})
		start := time.Now()
		n, err := svc.Reindex(ctx)
		if err != nil {
			return err
		}
		zapLog.Info("reindex complete", zap.String("index", cfg.Directory.SearchIndex), zap.Int("companies", n), zap.Duration("took", time.Since(start)))
		return nil
	},
}
