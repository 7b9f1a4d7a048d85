package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/target/hiring-api/config"
	httpx "github.com/target/hiring-api/internal/http"
)

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(cfg.Services)

	// Apply compression middleware first (innermost) so logging captures compressed sizes
	// Order: Recover -> CORS -> Logging -> Compression -> Router
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: cfg.Logger})(h)
	}

	h = httpx.Logging(cfg.Logger)(h)
	if len(cfg.HTTP.CORSAllowedOrigins) > 0 {
		h = newCORS(cfg.HTTP.CORSAllowedOrigins).Handler(h)
	}
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

// newCORS allows credentialed calls from the listed front-end origins.
func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", httpx.DefaultCSRFHeaderName},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}

func newHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

// serveHTTP runs server until ctx is canceled, then drains in-flight
// requests within timeout.
func serveHTTP(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
