package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/crypto"
	"github.com/taskforge/taskforge/internal/server"
	"github.com/taskforge/taskforge/internal/server/audit"
	"github.com/taskforge/taskforge/internal/server/handlers"
	"github.com/taskforge/taskforge/internal/server/middleware"
	"github.com/taskforge/taskforge/internal/server/session"
	"github.com/taskforge/taskforge/internal/server/storage/sqlite"
	"github.com/taskforge/taskforge/internal/server/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// fallbackJWTSecret используется, когда секрет не задан
// Только для разработки: в production обязателен TASKFORGE_JWT_SECRET
const fallbackJWTSecret = "fallback_secret_for_development_only"

func main() {
	cfg := config.FromEnv()

	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "Path to sqlite database file")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg.Addr = *addr
	cfg.DBPath = *dbPath

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("TASKFORGE_JWT_SECRET is not set, using development fallback secret")
		secret = fallbackJWTSecret
	}

	if crypto.UsingFallbackKey(cfg.EncryptionKey) {
		logger.Warn("TASKFORGE_ENCRYPTION_KEY is not set, field encryption runs on the development fallback key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	codec := token.NewCodec([]byte(secret))
	sessions := session.NewManager(codec, cfg.SecureCookies)
	cipher := crypto.NewFieldCipher(cfg.EncryptionKey, cfg.FailClosed)
	recorder := audit.NewRecorder(logger, store, store)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)

	router := server.NewRouter(logger, codec, limiter, server.Handlers{
		Auth:   handlers.NewAuthHandler(logger, store, sessions, codec, recorder),
		Tasks:  handlers.NewTasksHandler(logger, store, store, cipher, recorder),
		Audit:  handlers.NewAuditHandler(logger, store),
		Health: handlers.NewHealthHandler(logger, store.DB(), Version),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", httpServer.Addr),
			slog.String("version", Version))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("TaskForge Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
