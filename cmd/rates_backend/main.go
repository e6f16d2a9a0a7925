package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/adapters/database/badgerdb"
	"github.com/SscSPs/exchange_rates_app/internal/adapters/database/pgsql"
	"github.com/SscSPs/exchange_rates_app/internal/adapters/events"
	"github.com/SscSPs/exchange_rates_app/internal/adapters/hnb"
	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_app/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_app/internal/core/services"
	"github.com/SscSPs/exchange_rates_app/internal/handlers"
	"github.com/SscSPs/exchange_rates_app/internal/middleware"
	"github.com/SscSPs/exchange_rates_app/internal/platform/config"
	"github.com/SscSPs/exchange_rates_app/internal/platform/metrics"
	"github.com/SscSPs/exchange_rates_app/internal/scheduler"
	"github.com/SscSPs/exchange_rates_app/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 30 * time.Second

// @title Exchange Rates API
// @version 1.0
// @description Daily exchange rate sync and lookup service.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open rate store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}

	// --- Sync engine ---
	fetcher := hnb.NewClient(cfg.HNBBaseURL, hnb.WithTimeout(cfg.HNBTimeout), hnb.WithLogger(logger))
	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)

	syncOptions := []services.SyncOption{
		services.WithSyncLogger(logger),
		services.WithSyncLocation(cfg.SyncLocation),
		services.WithCycleObserver(syncMetrics),
	}
	var publisher *events.KafkaPublisher
	if cfg.KafkaEnabled() {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		syncOptions = append(syncOptions, services.WithEventPublisher(publisher))
		logger.Info("Publishing sync events", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", cfg.KafkaBrokers))
	}
	syncService := services.NewRateSyncService(fetcher, provider.ExchangeRateRepo, syncOptions...)

	sched, err := scheduler.New(scheduler.Config{
		CronSpec:     cfg.SyncCron,
		Location:     cfg.SyncLocation,
		PollInterval: cfg.SyncPollInterval,
	}, syncService, scheduler.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container := &portssvc.ServiceContainer{
		ExchangeRate: services.NewExchangeRateService(provider.ExchangeRateRepo),
		RateSync:     syncService,
		Schedule:     sched,
	}

	// --- HTTP API ---
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, container, prometheus.DefaultGatherer); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Background work ---
	var tasks backgroundTasks
	if cfg.BackfillOnStart && cfg.BackfillDays > 0 {
		tasks.Go(func() {
			if _, err := syncService.ColdStartBackfill(ctx, cfg.BackfillDays); err != nil {
				// Already logged by the sync service; the scheduler retries on its next run.
				logger.Warn("Cold start backfill did not complete", slog.Int("days", cfg.BackfillDays))
			}
		})
	}
	sched.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("Scheduler did not stop cleanly", slog.String("error", err.Error()))
	}
	if err := tasks.Wait(shutdownCtx); err != nil {
		logger.Error("Background tasks did not finish before shutdown", slog.String("error", err.Error()))
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", slog.String("error", err.Error()))
		}
	}
	if err := provider.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close rate store", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// openStore connects the configured storage engine. Postgres is migrated before use.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverBadger:
		db, err := database.OpenBadger(cfg.BadgerPath, logger)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		logger.Info("Badger store opened", slog.String("path", cfg.BadgerPath))
		return badgerdb.NewRepositoryProvider(db), nil
	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			dbPool.Close()
			return portsrepo.RepositoryProvider{}, err
		}
		return pgsql.NewRepositoryProvider(dbPool), nil
	}
}
