// Package app wires the storage, cache, service and transport layers
// together and owns the process lifecycle.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/callsight/insights-server/internal/api"
	"github.com/callsight/insights-server/internal/config"
	"github.com/callsight/insights-server/internal/ingest"
	"github.com/callsight/insights-server/internal/repository"
	"github.com/callsight/insights-server/internal/service"
	"github.com/callsight/insights-server/pkg/cache"
	dbbuilder "github.com/callsight/insights-server/pkg/database"
	grpcsrv "github.com/callsight/insights-server/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	httpServer *http.Server
	grpcServer *grpcsrv.Server
	watcher    *ingest.Watcher
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBDSN),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("database pool initialized",
		zap.String("driver", cfg.DBDriver),
		zap.String("dsn", cfg.DBDSN))

	callRepo := repository.NewCallRepository(dbPool, cfg.DBDriver)
	if err := callRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
	)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("cache client initialized", zap.String("addr", cfg.RedisAddr))

	analytics := service.NewCallAnalyticsService(callRepo, logger)

	handlers := api.NewHandlers(analytics, cacheClient, logger, cfg.CacheTTL)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC health server: %w", err)
	}

	var watcher *ingest.Watcher
	if cfg.IngestDir != "" {
		watcher = ingest.NewWatcher(cfg.IngestDir, analytics, logger)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		httpServer: httpServer,
		grpcServer: grpcServer,
		watcher:    watcher,
	}, nil
}

// Run starts all transports and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.grpcServer.Start()

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			return fmt.Errorf("ingest watcher failed: %w", err)
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		a.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("grpc shutdown error", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return nil
}
