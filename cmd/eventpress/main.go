// Package main is the entry point for the EventPress server.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventpress/internal/config"
	"eventpress/internal/database"
	"eventpress/internal/handlers"
	"eventpress/internal/render"
	"eventpress/internal/router"
	"eventpress/internal/session"
	"eventpress/internal/storage"
	"eventpress/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default admin account (no-op if users already exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the session store.
	valkeyClient, err := session.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, cfg.SessionTTL, secureCookies)

	// Initialize the HTML renderer for the public pages.
	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	packageStore := store.NewPackageStore(db)
	serviceStore := store.NewServiceStore(db)

	// Connect to S3-compatible object storage (optional, the app works
	// without it; uploads report 503).
	var storageClient *storage.Client
	if cfg.HasStorage() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketServices, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketServices)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	adminHandlers := handlers.NewAdmin(categoryStore, packageStore, serviceStore, storageClient)
	publicHandlers := handlers.NewPublic(renderer, serviceStore, categoryStore, packageStore)

	loginLimiter := router.DefaultLoginLimiter()
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:     sessionStore,
		Auth:         authHandlers,
		Admin:        adminHandlers,
		Public:       publicHandlers,
		LoginLimiter: loginLimiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
