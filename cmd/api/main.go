// Package main is the entry point for the eRJ API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pkordes/erj-report/internal/config"
	"github.com/pkordes/erj-report/internal/handler"
	"github.com/pkordes/erj-report/internal/middleware"
	"github.com/pkordes/erj-report/internal/policy"
	"github.com/pkordes/erj-report/internal/repo"
	"github.com/pkordes/erj-report/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	ctx := context.Background()
	store, closeStore, err := repo.Open(ctx, repo.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		Migrate:     cfg.MigrateOnStart,
	})
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("database connection established", "driver", cfg.DBDriver, "migrated", cfg.MigrateOnStart)

	// --- Authorization ----------------------------------------------------
	// authz stays a nil interface when disabled so services allow everything.
	var authz service.Authorizer
	if cfg.AuthzEnabled {
		a, err := policy.New(ctx)
		if err != nil {
			slog.Error("failed to compile authorization policy", "error", err)
			os.Exit(1)
		}
		authz = a
	} else {
		slog.Warn("authorization disabled")
	}

	// --- Services ---------------------------------------------------------
	reports := service.NewReportService(repo.NewReportRepo(store), authz, logger)
	users := service.NewUserService(repo.NewUserRepo(store), authz, logger)
	phonebook := service.NewPhonebookService(repo.NewPhonebookRepo(store), authz, logger, cfg.PhonebookURL)
	discounts := service.NewDiscountService(repo.NewDiscountRepo(store), authz, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Identity → Logger →
	// Recoverer → CORS → body limit. Identity runs before the logger so each
	// request line carries the caller's user id.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewIdentityHandler())
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	api := handler.NewServer(reports, users, phonebook, discounts, store, logger)
	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
