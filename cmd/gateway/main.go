package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Fatihur/api-baru/internal/config"
	"github.com/Fatihur/api-baru/internal/driver/loopback"
	"github.com/Fatihur/api-baru/internal/gateway"
	"github.com/Fatihur/api-baru/internal/health"
	"github.com/Fatihur/api-baru/internal/metrics"
	"github.com/Fatihur/api-baru/internal/server"
	"github.com/Fatihur/api-baru/internal/session"
	"github.com/Fatihur/api-baru/internal/store"
	"github.com/Fatihur/api-baru/internal/tenant"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting messaging gateway",
		zap.Int("port", cfg.Server.Port),
		zap.String("tenant_store", cfg.TenantStore.Backend),
		zap.String("credentials", cfg.Credentials.Backend))

	// Initialize metrics
	m := metrics.NewMetrics()

	// Initialize tenant repository
	tenantRepo, err := buildTenantRepository(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize tenant repository", zap.Error(err))
	}
	defer tenantRepo.Close()

	// Initialize credential store
	credStore, err := buildCredentialStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize credential store", zap.Error(err))
	}
	defer credStore.Close()

	// Initialize services
	ctx := context.Background()

	tenants, err := tenant.NewService(ctx, tenantRepo, cfg.TenantStore.FlushInterval, logger, m)
	if err != nil {
		logger.Fatal("Failed to initialize tenant service", zap.Error(err))
	}

	sessionCfg := session.Config{
		BaseDelay:   cfg.Session.ReconnectBaseDelay,
		MaxDelay:    cfg.Session.ReconnectMaxDelay,
		MaxAttempts: cfg.Session.ReconnectMaxRetries,
		BufferSize:  cfg.Session.InboxSize,
	}
	registry := session.NewRegistry(loopback.NewFactory(), credStore, sessionCfg, logger, m)

	orch := gateway.NewOrchestrator(tenants, registry, logger)

	// Initialize HTTP server
	healthCheck := health.NewHealthCheck(tenantRepo, logger)
	srv := server.NewServer(cfg, orch, healthCheck, m, logger)
	srv.SetupRoutes()

	// Run servers
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		g.Go(func() error {
			logger.Info("Starting metrics server", zap.String("address", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
	}

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	case <-gctx.Done():
		logger.Error("Server error", zap.Error(gctx.Err()))
	}

	// Graceful shutdown
	logger.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}

	// Stop services: sessions first so credential rotation still has a
	// live store, then the tenant flusher.
	healthCheck.Stop()
	registry.Shutdown(shutdownCtx)
	tenants.Stop()

	if err := g.Wait(); err != nil {
		logger.Error("Server group error", zap.Error(err))
	}

	logger.Info("Gateway stopped")
}

// buildLogger constructs the process logger from the logging config.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// buildTenantRepository selects the tenant persistence backend.
func buildTenantRepository(cfg *config.Config, logger *zap.Logger) (store.TenantRepository, error) {
	switch cfg.TenantStore.Backend {
	case "postgres":
		return store.NewPostgresTenantRepository(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Database,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			logger,
		)
	default:
		return store.NewFileTenantRepository(cfg.TenantStore.FilePath, logger)
	}
}

// buildCredentialStore selects the credential persistence backend.
func buildCredentialStore(cfg *config.Config, logger *zap.Logger) (store.CredentialStore, error) {
	switch cfg.Credentials.Backend {
	case "redis":
		return store.NewRedisCredentialStore(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			logger,
		)
	default:
		return store.NewFileCredentialStore(cfg.Credentials.Dir, logger)
	}
}
