// Package server wires storage, handlers and middleware into the HTTP
// application and runs it with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Greg-Swiftomatic/promptomatik/internal/crypto"
	"github.com/Greg-Swiftomatic/promptomatik/internal/server/config"
	"github.com/Greg-Swiftomatic/promptomatik/internal/server/handlers"
	"github.com/Greg-Swiftomatic/promptomatik/internal/server/middleware"
	"github.com/Greg-Swiftomatic/promptomatik/internal/server/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled HTTP application.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	storage *sqlite.Storage
	version string
}

// NewApp opens storage and builds the application.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		storage: store,
		version: version,
	}, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	return a.storage.Close()
}

// hasher returns the configured password hasher.
func (a *App) hasher() crypto.Hasher {
	if a.cfg.PasswordScheme == "argon2id" {
		return crypto.NewArgon2Hasher()
	}
	return crypto.SHA256Hasher{}
}

// Handler builds the route table with the middleware chain applied.
func (a *App) Handler() http.Handler {
	secret := []byte(a.cfg.JWTSecret)
	tokenCfg := handlers.TokenConfig{
		Secret: secret,
		TTL:    a.cfg.TokenTTL,
	}

	authHandler := handlers.NewAuthHandler(a.logger, a.storage, a.hasher(), tokenCfg)
	promptHandler := handlers.NewPromptHandler(a.logger, a.storage)
	healthHandler := handlers.NewHealthHandler(a.logger, a.version)

	requireAuth := middleware.Auth(a.logger, secret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("POST /api/prompts", requireAuth(http.HandlerFunc(promptHandler.Create)))
	mux.Handle("GET /api/prompts", requireAuth(http.HandlerFunc(promptHandler.List)))

	var handler http.Handler = mux
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Logging(a.logger)(handler)
	handler = middleware.Recovery(a.logger)(handler)
	return handler
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Address,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "address", a.cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
