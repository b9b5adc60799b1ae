// Package main is the entry point of the library service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/library-service/internal/adapters/http"
	"github.com/jsamuelsen/library-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/library-service/internal/adapters/storage/memory"
	"github.com/jsamuelsen/library-service/internal/adapters/storage/postgres"
	"github.com/jsamuelsen/library-service/internal/adapters/storage/redis"
	"github.com/jsamuelsen/library-service/internal/app"
	"github.com/jsamuelsen/library-service/internal/platform/config"
	"github.com/jsamuelsen/library-service/internal/platform/logging"
	"github.com/jsamuelsen/library-service/internal/platform/metrics"
	"github.com/jsamuelsen/library-service/internal/platform/telemetry"
	"github.com/jsamuelsen/library-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// bookStore is what every storage driver provides.
type bookStore interface {
	ports.BookRepository
	ports.HealthChecker
}

func run() error {
	ctx := context.Background()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("timezone", loc.String()),
		slog.String("storage_driver", cfg.Storage.Driver),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	registry := metrics.NewRegistry()
	bookMetrics, err := metrics.NewBookMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering book metrics: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	bookService := app.NewBookService(app.BookServiceConfig{
		Repository: store,
		Clock:      ports.SystemClock,
		Location:   loc,
		Metrics:    bookMetrics,
		Logger:     logger,
	})

	buildInfo := handlers.NewBuildInfo(cfg.App.Name, Version, Commit, BuildTime)

	server := http.New(cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Telemetry:      telProvider.Enabled(),
		RequestTimeout: cfg.Server.RequestTimeout,
		Auth:           cfg.Auth,
		RateLimit:      cfg.RateLimit,
		Books:          handlers.NewBookHandler(bookService),
		Health:         handlers.NewHealthHandler(healthRegistry, buildInfo, metrics.Handler(registry)),
	})

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// openStore connects the configured storage driver. The returned func
// releases its connections.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (bookStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Info("connecting book store",
			slog.String("driver", cfg.Driver),
			slog.String("dsn", cfg.Postgres.DSN),
			slog.Bool("migrate_on_start", cfg.Postgres.MigrateOnStart),
		)

		store, err := postgres.Open(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres book store: %w", err)
		}

		return store, store.Close, nil

	case config.DriverRedis:
		logger.Info("connecting book store",
			slog.String("driver", cfg.Driver),
			slog.String("addr", cfg.Redis.Addr),
			slog.Int("db", cfg.Redis.DB),
			slog.String("key_prefix", cfg.Redis.KeyPrefix),
		)

		store, err := redis.Open(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis book store: %w", err)
		}

		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("closing redis book store", slog.Any("error", err))
			}
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory book store; books are lost on restart")
		return memory.NewBookStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// waitForShutdown blocks until a signal arrives or the server fails, then
// drains in-flight requests within shutdownTimeout.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-serverErr:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return errors.New("server stopped unexpectedly")

	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
