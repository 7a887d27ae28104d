package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpadapter "github.com/koshhq/kosh/internal/adapter/http"
	"github.com/koshhq/kosh/internal/adapter/notify"
	"github.com/koshhq/kosh/internal/adapter/persistence"
	"github.com/koshhq/kosh/internal/adapter/ratelimit"
	"github.com/koshhq/kosh/internal/auth"
	"github.com/koshhq/kosh/internal/config"
	"github.com/koshhq/kosh/internal/usecase"
	"github.com/koshhq/kosh/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	appLogger.WithField("environment", cfg.Server.Environment).Info("Application starting")

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		appLogger.Fatalf("Failed to ping database: %v", err)
	}
	appLogger.Info("Database connection established")

	store := persistence.NewStore(db)

	tokens, err := auth.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		appLogger.Fatalf("Failed to initialize token service: %v", err)
	}

	limiter, err := ratelimit.NewLimiter(ratelimit.Config{
		Enabled:  cfg.Auth.RateLimitEnabled,
		RedisURL: cfg.Redis.URL,
		Requests: cfg.Auth.RateLimitRequests,
		Window:   cfg.Auth.RateLimitWindow,
	}, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize rate limiter: %v", err)
	}

	// Initialize use cases
	notifier := notify.NewLogNotifier(appLogger)
	audit := usecase.NewAuditTrail(store, appLogger)
	registry := usecase.NewAssetRegistry(store, audit, appLogger)
	engine := usecase.NewAssignmentEngine(store, audit, notifier, appLogger)
	maintenance := usecase.NewMaintenanceEngine(store, audit, notifier, appLogger)
	onboarding := usecase.NewOnboardingService(store, engine, appLogger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, registry, engine, maintenance, onboarding, audit, tokens, limiter, appLogger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Server shutdown failed: %v", err)
	}
	appLogger.Info("Server stopped")
}
