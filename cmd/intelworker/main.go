package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/estiacrm/marketintel/config"
	"github.com/estiacrm/marketintel/internal/fetch"
	"github.com/estiacrm/marketintel/internal/platform"
	"github.com/estiacrm/marketintel/internal/ratelimit"
	"github.com/estiacrm/marketintel/internal/runner"
	"github.com/estiacrm/marketintel/internal/scheduler"
	"github.com/estiacrm/marketintel/internal/storage"
)

var configName string

func main() {
	root := &cobra.Command{
		Use:   "intelworker",
		Short: "Market intelligence scrape worker",
		Long: `intelworker crawls the external listing portals each tenant has enabled,
normalizes what it finds into the shared listing store and keeps the
per-tenant scrape schedule honest.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configName, "config", "marketintel", "config file name (without extension)")

	root.AddCommand(newServeCmd(), newOnceCmd(), newOrgCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps is everything a command needs wired together. Redis being down
// degrades to the in-process limiter and lock instead of failing startup.
type deps struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *platform.Registry
	store    *storage.PostgresStore
	archive  *storage.MongoArchive
	service  *runner.Service
}

func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(configName)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	registry, err := platform.LoadRegistry(cfg.PlatformsFile)
	if err != nil {
		return nil, fmt.Errorf("loading platform registry: %w", err)
	}

	store, err := storage.NewPostgresStore(cfg.DB.DSN(), log)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	archive, err := storage.NewMongoArchive(ctx, &cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo archive: %w", err)
	}

	var (
		limiter ratelimit.Limiter
		locks   runner.PairLock
		seen    runner.SeenFilter
	)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, using in-process rate limiting and locking", zap.Error(err))
		limiter = ratelimit.NewMemoryLimiter(registry)
		locks = runner.NewMemoryPairLock()
		seen = runner.NewMemorySeenFilter()
	} else {
		limiter = ratelimit.NewRedisLimiter(rdb, registry)
		locks = runner.NewRedisPairLock(rdb)
		seen = runner.NewBloomSeenFilter(cfg.Redis.Host)
	}

	portal := fetch.NewPortal(cfg.Crawl, limiter, log)
	jobRunner := runner.New(registry, portal, store, store, archive, seen, locks,
		runner.Options{
			DeactivateAfterRuns: cfg.Scheduler.DeactivateAfterRuns,
		}, log)

	controller := scheduler.NewController(scheduler.Options{
		FailureThreshold: cfg.Scheduler.FailureThreshold,
		BackoffFactor:    cfg.Scheduler.BackoffFactor,
		PauseCooldown:    cfg.Scheduler.PauseCooldown,
	})
	service := runner.NewService(controller, store, store, jobRunner,
		cfg.Scheduler.MaxConcurrentJobs, log)

	return &deps{
		cfg:      cfg,
		log:      log,
		registry: registry,
		store:    store,
		archive:  archive,
		service:  service,
	}, nil
}

func (d *deps) close(ctx context.Context) {
	if err := d.archive.Disconnect(ctx); err != nil {
		d.log.Warn("mongo disconnect failed", zap.Error(err))
	}
	_ = d.log.Sync()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape scheduler until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.close(context.Background())

			cycle := func() {
				if err := d.service.RunCycle(ctx, time.Now()); err != nil {
					d.log.Error("scheduling cycle failed", zap.Error(err))
				}
			}

			c := cron.New()
			if _, err := c.AddFunc(fmt.Sprintf("@every %s", d.cfg.TickInterval), cycle); err != nil {
				return fmt.Errorf("registering tick: %w", err)
			}
			d.log.Info("scrape worker started",
				zap.Duration("tick", d.cfg.TickInterval),
				zap.Strings("platforms", d.registry.IDs()))

			cycle()
			c.Start()
			<-ctx.Done()

			d.log.Info("shutting down, waiting for in-flight jobs")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
			case <-time.After(30 * time.Second):
				d.log.Warn("gave up waiting for running jobs")
			}
			return nil
		},
	}
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single scheduling cycle and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.close(context.Background())

			return d.service.RunCycle(ctx, time.Now())
		},
	}
}
