package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tapstampr/internal/auth"
	"tapstampr/internal/config"
	"tapstampr/internal/handler"
	"tapstampr/internal/middleware"
	"tapstampr/internal/repository/storage"
	"tapstampr/internal/service/library"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// run wires the server and serves until ctx is cancelled by a signal
func run() error {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg, "server")
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
		"storage_key", cfg.StorageKey,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer backend.Close()

	// Bearer token verification is optional; without it every request uses the base key
	var jwtVerifier auth.JWTVerifier
	if cfg.AuthEnabled() {
		jwtVerifier, err = auth.NewJWTVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			logger.Error("failed to create JWT verifier", "jwks_url", cfg.AuthJWKSURL, "error", err)
			return fmt.Errorf("create JWT verifier: %w", err)
		}
		defer jwtVerifier.Close()
	} else {
		logger.Warn("auth disabled, all requests share the base storage key")
	}

	namespaces := library.NewNamespaces(backend.KV, backend.TxManager, cfg.StorageKey, logger)
	folderHandler := handler.NewFolderHandler(namespaces, logger)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.HealthCheck)
	folderHandler.RegisterRoutes(mux, !cfg.IsProduction())

	if !cfg.IsProduction() {
		logger.Warn("bulk clear route registered: DELETE /api/folders")
	}

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port, "auth_enabled", cfg.AuthEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
