package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"bank-auth/db"
	"bank-auth/internal/auth"
	"bank-auth/internal/config"
	"bank-auth/internal/logger"
	"bank-auth/internal/session"
	"bank-auth/internal/web"

	"go.uber.org/zap"
)

const (
	sessionPruneInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

func runSessionJanitor(store *session.MemoryStore, log *zap.Logger, done <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Session janitor panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
		log.Info("Session janitor stopped")
	}()

	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	log.Info("Session janitor started")
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if removed := store.Prune(); removed > 0 {
				log.Debug("Pruned expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	log.Info("Starting bank-auth",
		zap.Int("pid", os.Getpid()),
		zap.String("runtime", runtime.GOOS+"/"+runtime.GOARCH),
		zap.String("go", runtime.Version()),
		zap.String("database", string(cfg.DatabaseType)),
		zap.String("pool_mode", string(cfg.PoolMode)),
	)

	repoFactory, err := db.Connect(cfg)
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))
		return 1
	}
	defer func() {
		if err := repoFactory.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	bootstrapper := db.NewBootstrapper(repoFactory.Handle(), db.NewRetryPolicy(cfg), logger.WithComponent(log, "bootstrap"))
	authService := auth.NewService(repoFactory.NewUserRepository(), auth.Scheme(cfg.PasswordScheme), logger.WithComponent(log, "auth"))
	store := session.NewStore(cfg)

	webHandler, err := web.NewWebHandler(authService, store, bootstrapper, logger.WithComponent(log, "http"))
	if err != nil {
		log.Error("Failed to load templates", zap.Error(err))
		return 1
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           webHandler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	defer close(done)
	if memory, ok := store.(*session.MemoryStore); ok {
		go runSessionJanitor(memory, logger.WithComponent(log, "sessions"), done)
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server running", zap.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	bootstrapErr := make(chan error, 1)
	go func() {
		bootstrapErr <- bootstrapper.Run(ctx)
	}()

	exitCode := 0
	for exitCode == 0 && ctx.Err() == nil {
		select {
		case err := <-serverErr:
			log.Error("Server error", zap.Error(err))
			exitCode = 1
		case err := <-bootstrapErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Database bootstrap failed, exiting", zap.Error(err))
				exitCode = 1
			}
			bootstrapErr = nil
		case <-ctx.Done():
			log.Info("Received shutdown signal")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
		exitCode = 1
	}
	log.Info("Server stopped")
	return exitCode
}
