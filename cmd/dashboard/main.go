// cmd/dashboard/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"business-directory/internal/common/aws"
	"business-directory/internal/common/config"
	"business-directory/internal/common/database"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/observability"
	"business-directory/internal/directory"
	"business-directory/internal/panel"
	"business-directory/internal/server"
	"business-directory/pkg/registry"
	"business-directory/web"
)

const (
	shutdownTimeout   = 30 * time.Second
	evictionSchedule  = "@every 1m"
	startupWarmupWait = 10 * time.Second
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dashboard...", zap.String("version", cfg.App.Version), zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	version, err := pg.Migrate(database.MigrateUp, 0)
	if err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("Schema is up to date", zap.Uint("version", version))

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Directory service ---
	index := directory.NewSearchIndex(esClient, cfg.Directory.SearchIndex)
	if err := index.EnsureIndex(ctx); err != nil {
		// search falls back to the database until the index exists
		zapLog.Warn("search index not ready", zap.String("index", cfg.Directory.SearchIndex), zap.Error(err))
	}

	var (
		email directory.EmailSender
		sms   directory.SMSSender
	)
	nc := cfg.Notifications
	if nc.Email.Enabled || nc.SMS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, nc.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if nc.Email.Enabled {
			email = aws.NewSESClient(awsCfg)
		}
		if nc.SMS.Enabled {
			sms = aws.NewSNSClient(awsCfg)
		}
		zapLog.Info("Notification clients initialized", zap.Bool("email", nc.Email.Enabled), zap.Bool("sms", nc.SMS.Enabled))
	}
	notifier := directory.NewNotifier(directory.NotifierConfig{
		EmailEnabled: nc.Email.Enabled,
		FromEmail:    nc.Email.FromEmail,
		SMSEnabled:   nc.SMS.Enabled,
		SenderID:     nc.SMS.SenderID,
	}, email, sms, log)

	svc := directory.NewService(directory.Deps{
		Store:         directory.NewRepository(pg.DB),
		Index:         index,
		Cache:         directory.NewSnapshotCache(redis.Client, config.GetDuration(cfg.Directory.SnapshotCacheTTL)),
		Notifier:      notifier,
		BannedWords:   cfg.Directory.BannedWords,
		Observability: obs,
		Logger:        log,
	})

	// --- Templates and section catalog ---
	templates, err := web.Templates()
	if err != nil {
		zapLog.Fatal("templates failed to parse", zap.Error(err))
	}
	checkCatalog(cfg.Sections.RegistryPath, zapLog)

	// --- HTTP server ---
	srv := server.New(server.Deps{
		Config:    cfg.Server,
		Panel:     cfg.Panel,
		AppName:   cfg.App.Name,
		Directory: svc,
		Templates: templates,
		Checks: map[string]server.Pinger{
			"postgres":      pg,
			"redis":         redis,
			"elasticsearch": esClient,
		},
		Observability: obs,
		Logger:        log,
	})

	if err := srv.Sessions().StartEviction(evictionSchedule); err != nil {
		zapLog.Fatal("session eviction schedule failed", zap.Error(err))
	}
	defer srv.Sessions().Stop()

	// --- Snapshot cache warm-up ---
	warmup := cron.New()
	if _, err := warmup.AddFunc(cfg.Directory.CacheWarmup, func() {
		wctx, cancel := context.WithTimeout(ctx, startupWarmupWait)
		defer cancel()
		if err := svc.WarmCache(wctx); err != nil {
			zapLog.Warn("snapshot cache warm-up failed", zap.Error(err))
		}
	}); err != nil {
		zapLog.Fatal("invalid cache warm-up schedule", zap.String("spec", cfg.Directory.CacheWarmup), zap.Error(err))
	}
	warmup.Start()
	defer func() { <-warmup.Stop().Done() }()

	wctx, cancel := context.WithTimeout(ctx, startupWarmupWait)
	if err := svc.WarmCache(wctx); err != nil {
		zapLog.Warn("initial snapshot cache warm-up failed", zap.Error(err))
	}
	cancel()

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("Dashboard listening", zap.String("address", cfg.Server.Address), zap.String("admin", cfg.Server.AdminPath))
		srv.SetReady(true)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, draining connections...")
		srv.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("Dashboard stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Dashboard stopped gracefully")
}

// checkCatalog warns when the section catalog is missing or out of step with the router.
func checkCatalog(path string, log *zap.Logger) {
	catalog, err := registry.LoadCatalog(path)
	if err != nil {
		log.Warn("section catalog not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	for _, problem := range catalog.Validate() {
		log.Warn("section catalog problem", zap.String("problem", problem))
	}
	keys := make([]string, 0, len(panel.AllSections))
	for _, s := range panel.AllSections {
		keys = append(keys, string(s))
	}
	if missing := catalog.Missing(keys); len(missing) > 0 {
		log.Warn("sections missing from catalog", zap.Strings("sections", missing))
	}
}
