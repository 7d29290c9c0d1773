// TravelPlaner chat daemon: maintains the trip chat stream and its
// reduced projections for the local presentation layer.
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/0SRAF0/TravelPlaner/internal/activities"
	"github.com/0SRAF0/TravelPlaner/internal/api"
	"github.com/0SRAF0/TravelPlaner/internal/config"
	"github.com/0SRAF0/TravelPlaner/internal/identity"
	"github.com/0SRAF0/TravelPlaner/internal/middleware"
	"github.com/0SRAF0/TravelPlaner/internal/session"
	"github.com/0SRAF0/TravelPlaner/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting chat daemon", "port", cfg.Port, "backend", cfg.BackendURL, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	profile, err := identity.Bootstrap(context.Background(), repo, cfg.UserName)
	if err != nil {
		slog.Error("Failed to bootstrap local identity", "error", err)
		os.Exit(1)
	}
	slog.Info("Local identity ready", "user_id", profile.UserID, "name", profile.Name)

	// Initialize services.
	ctrl := session.NewController(cfg.BackendURL, profile)
	defer ctrl.Close()
	activityClient := activities.NewClient(cfg.BackendURL, repo)

	// Join the configured trip at startup, if any. A failure here is not
	// fatal: the presentation layer can retry through POST /api/session.
	if cfg.TripID != "" {
		if err := ctrl.Switch(context.Background(), cfg.TripID); err != nil {
			slog.Warn("Initial trip connect failed", "trip_id", cfg.TripID, "error", err)
		}
	}

	// Setup router.
	handler := api.NewHandler(ctrl, activityClient)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{cfg.FrontendURL}))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Local API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")
	ctrl.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Chat daemon stopped")
}
