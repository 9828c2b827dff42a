package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/auth"
	"github.com/campuskul/crm-console-api/internal/config"
	"github.com/campuskul/crm-console-api/internal/events"
	"github.com/campuskul/crm-console-api/internal/httpserver"
	"github.com/campuskul/crm-console-api/internal/observer"
	"github.com/campuskul/crm-console-api/internal/storage"
	"github.com/campuskul/crm-console-api/internal/usecase"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	// Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize metrics conditionally
	observer.InitMetrics(cfg.Metrics.Enabled)

	logger.Log.Info("Starting CRM Console API",
		zap.String("environment", cfg.Environment),
		zap.String("nats_url", cfg.NATS.URL),
		zap.Int("port", cfg.Server.Port),
	)

	if cfg.Auth.JWTSecret == "" {
		logger.Log.Fatal("JWT secret is required (auth.jwtSecret / JWT_SECRET)")
	}

	// Initialize repositories
	postgresRepo, err := initPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Postgres repository", zap.Error(err))
	}

	// Initialize the domain event publisher
	publisher, err := events.NewNatsPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.NATS.CountsDebounce)
	if err != nil {
		logger.Log.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}

	// Create repository adapters for the service
	stageRepo := storage.NewStageRepoAdapter(postgresRepo)
	leadRepo := storage.NewLeadRepoAdapter(postgresRepo)
	followUpRepo := storage.NewFollowUpRepoAdapter(postgresRepo)
	userRepo := storage.NewUserRepoAdapter(postgresRepo)
	activityRepo := storage.NewActivityRepoAdapter(postgresRepo)
	orgRepo := storage.NewOrganizationRepoAdapter(postgresRepo)

	// Create the lead import worker pool
	importer, err := usecase.NewLeadImporter(cfg.WorkerPools.Import, logger.Log)
	if err != nil {
		logger.Log.Fatal("Failed to initialize lead import worker pool", zap.Error(err))
	}

	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Create service, injecting the worker pool and publisher
	service := usecase.NewCrmService(
		stageRepo, leadRepo, followUpRepo, userRepo, activityRepo, orgRepo,
		publisher, importer, authManager,
	)

	// Ensure the uploads directory exists before the server serves it
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		logger.Log.Fatal("Failed to create uploads directory", zap.Error(err))
	}

	server := httpserver.NewServer(cfg, service, authManager, postgresRepo.Ping)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Start()
	}()

	// Wait for termination signal or server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			logger.Log.Error("HTTP server failed, initiating shutdown", zap.Error(err))
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", 30*time.Second))

	var wg sync.WaitGroup
	wg.Add(4)

	// Shutdown HTTP server first so no new work arrives
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping HTTP server")
		start := time.Now()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Error stopping HTTP server", zap.Error(err))
		} else {
			logger.Log.Info("[shutdown] HTTP server stopped",
				zap.Duration("duration", time.Since(start)))
		}
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping HTTP server",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Shutdown lead import worker pool
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping lead import worker pool")
		start := time.Now()
		importer.Close()
		logger.Log.Info("[shutdown] Lead import worker pool stopped",
			zap.Duration("duration", time.Since(start)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping lead import worker pool",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Shutdown event publisher, flushing any pending counts broadcast
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Closing NATS publisher")
		start := time.Now()
		publisher.Close()
		logger.Log.Info("[shutdown] NATS publisher closed",
			zap.Duration("duration", time.Since(start)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while closing NATS publisher",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Close database connection
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Closing PostgreSQL connection")
		start := time.Now()
		if err := postgresRepo.Close(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Failed to close PostgreSQL connection", zap.Error(err))
		} else {
			logger.Log.Info("[shutdown] PostgreSQL connection closed",
				zap.Duration("duration", time.Since(start)))
		}
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while closing database connection",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Wait with a timeout for all components to shut down
	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Log.Info("[shutdown] All components stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Log.Warn("[shutdown] Graceful shutdown timed out, forcing exit")
	}

	logger.Log.Info("CRM Console API shutdown complete")
}

// Initialize PostgreSQL repository
func initPostgresRepo(dsn string, autoMigrate bool) (*storage.PostgresRepo, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	repo, err := storage.NewPostgresRepo(dsn, autoMigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres repository: %w", err)
	}

	logger.Log.Info("Initialized PostgreSQL repository")
	return repo, nil
}
