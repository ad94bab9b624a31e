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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pmcell/catalog-backend/api/routes"
	"github.com/pmcell/catalog-backend/internal/abandonedcart"
	"github.com/pmcell/catalog-backend/internal/cart"
	"github.com/pmcell/catalog-backend/internal/catalog"
	"github.com/pmcell/catalog-backend/internal/customers"
	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/liberation"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/internal/orders"
	"github.com/pmcell/catalog-backend/pkg/config"
	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/metrics"
	"github.com/pmcell/catalog-backend/pkg/migrate"
	"github.com/pmcell/catalog-backend/pkg/redis"
	"github.com/pmcell/catalog-backend/pkg/webhook"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: cfg.App.ServiceName,
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rateMetrics := metrics.NewRateLimitMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo: catalogRepo,
		Cache: catalog.NewCache(redisClient, catalog.CacheTTLs{
			Categories:   cfg.Cache.CategoriesTTL,
			ProductCount: cfg.Cache.ProductCountTTL,
			Suggestions:  cfg.Cache.SuggestionsTTL,
		}, logg),
		Logger:  logg,
		BaseURL: cfg.App.PublicURL,
	})
	requireResource(context.Background(), logg, "catalog service", err)

	cartService, err := cart.NewService(catalogRepo, logg)
	requireResource(context.Background(), logg, "cart service", err)

	journeyService, err := journey.NewService(journey.NewRepository(conn), logg)
	requireResource(context.Background(), logg, "journey service", err)

	customerService, err := customers.NewService(customers.NewRepository(conn))
	requireResource(context.Background(), logg, "customers service", err)

	notificationsRepo := notifications.NewRepository(conn)
	dispatcher := notifications.NewDispatcher(notificationsRepo, webhook.NewClient(
		webhook.WithUserAgent(cfg.Webhook.UserAgent),
		webhook.WithRetryDelay(cfg.Webhook.RetryDelay),
	), webhookMetrics, logg)
	notificationsService, err := notifications.NewService(notificationsRepo)
	requireResource(context.Background(), logg, "notifications service", err)

	liberationService, err := liberation.NewService(liberation.ServiceParams{
		Journey:    journeyService,
		Customers:  customerService,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	requireResource(context.Background(), logg, "liberation service", err)

	abandonedCartService, err := abandonedcart.NewService(abandonedcart.ServiceParams{
		Repo:       abandonedcart.NewRepository(conn),
		Journey:    journeyService,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	requireResource(context.Background(), logg, "abandoned cart service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:       orders.NewRepository(conn),
		Catalog:    catalogRepo,
		Tx:         dbClient,
		Journey:    journeyService,
		Customers:  customerService,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	requireResource(context.Background(), logg, "orders service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			rateMetrics,
			catalogService,
			cartService,
			journeyService,
			liberationService,
			abandonedCartService,
			ordersService,
			notificationsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}

	// in-flight webhook deliveries finish before the pools close
	dispatcher.Wait()
	logg.Info(ctx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
