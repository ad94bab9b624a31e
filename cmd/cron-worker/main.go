package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pmcell/catalog-backend/internal/abandonedcart"
	"github.com/pmcell/catalog-backend/internal/catalog"
	"github.com/pmcell/catalog-backend/internal/cron"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/config"
	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/metrics"
	"github.com/pmcell/catalog-backend/pkg/migrate"
	"github.com/pmcell/catalog-backend/pkg/redis"
	"github.com/pmcell/catalog-backend/pkg/webhook"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(context.Background(), logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(context.Background(), logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo: catalog.NewRepository(conn),
		Cache: catalog.NewCache(redisClient, catalog.CacheTTLs{
			Categories:   cfg.Cache.CategoriesTTL,
			ProductCount: cfg.Cache.ProductCountTTL,
			Suggestions:  cfg.Cache.SuggestionsTTL,
		}, logg),
		Logger:  logg,
		BaseURL: cfg.App.PublicURL,
	})
	requireResource(context.Background(), logg, "catalog service", err)

	dispatcher := notifications.NewDispatcher(
		notifications.NewRepository(conn),
		webhook.NewClient(
			webhook.WithUserAgent(cfg.Webhook.UserAgent),
			webhook.WithRetryDelay(cfg.Webhook.RetryDelay),
		),
		metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	defer dispatcher.Wait()

	abandonedCartService, err := abandonedcart.NewService(abandonedcart.ServiceParams{
		Repo:   abandonedcart.NewRepository(conn),
		Logger: logg,
	})
	requireResource(context.Background(), logg, "abandoned cart service", err)

	redeliveryJob, err := cron.NewRedeliveryJob(cron.RedeliveryJobParams{
		Logger:      logg,
		Carts:       abandonedCartService,
		Webhooks:    dispatcher,
		MinAge:      cfg.Cron.RedeliveryMinAge,
		BatchSize:   cfg.Cron.RedeliveryBatchSize,
		MaxAttempts: cfg.Cron.RedeliveryMaxAttempts,
		PerSecond:   cfg.Cron.RedeliveryPerSecond,
	})
	requireResource(context.Background(), logg, "redelivery job", err)

	cacheWarmJob, err := cron.NewCacheWarmJob(logg, catalogService)
	requireResource(context.Background(), logg, "cache warm job", err)

	registry, err := cron.NewRegistry(redeliveryJob, cacheWarmJob)
	requireResource(context.Background(), logg, "cron registry", err)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), 0)
	requireResource(context.Background(), logg, "cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	requireResource(context.Background(), logg, "cron service", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})
	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
