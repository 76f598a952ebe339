package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	madlen "github.com/kemalefekolayli/madlen-case-study"
	"github.com/kemalefekolayli/madlen-case-study/internal/config"
	"github.com/kemalefekolayli/madlen-case-study/internal/handler"
	"github.com/kemalefekolayli/madlen-case-study/internal/middleware"
	"github.com/kemalefekolayli/madlen-case-study/internal/repository"
	"github.com/kemalefekolayli/madlen-case-study/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.OpenRouterKey == "" {
		slog.Warn("OPENROUTER_API_KEY is not set, chat requests will fail")
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(madlen.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Load model catalog
	models, err := config.LoadModels(cfg.ModelsFile)
	if err != nil {
		slog.Error("failed to load model catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("model catalog loaded", "models", len(models))

	// Initialize services
	store := repository.NewSessionStore(pool)
	catalog := service.NewModelCatalog(models)
	openRouter := service.NewOpenRouterService(cfg.OpenRouterKey, cfg.OpenRouterURL)
	chatService := service.NewChatService(store, openRouter, catalog, cfg)

	// Build router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Recover(), middleware.Logging())
	handler.New(chatService).Register(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped gracefully")
}
