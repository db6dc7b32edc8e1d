// Command bragi runs the query engine's HTTP surface: autocomplete,
// reverse geocoding, feature lookup by id, and a status endpoint.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/cache"
	"mimirsbrunn/internal/config"
	"mimirsbrunn/internal/httpapi"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/metrics"
	"mimirsbrunn/internal/middleware"
	"mimirsbrunn/internal/utils"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	config.Load()
	l := logger.Setup()
	l.Info("log_init_ok")

	cfg := config.ServerFromEnv()
	l.Info("config_loaded", "backend_url", cfg.BackendURL, "index_root", cfg.IndexRoot, "addr", cfg.Addr)

	b := backend.New(cfg.BackendURL, &http.Client{Timeout: cfg.RequestTimeout})
	c := cache.OpenFromEnv()

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.BuildRoutes(b, c, cfg.IndexRoot))
	mux.Handle("/metrics", metrics.Handler())

	var handler http.Handler = mux
	handler = middleware.RateLimit(handler)
	handler = logger.AccessMiddleware(l)(handler)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	tlsEnabled := os.Getenv("BRAGI_TLS_ENABLED") == "true"
	go func() {
		l.Info("server_listen", "addr", cfg.Addr, "tls", tlsEnabled)
		var err error
		if tlsEnabled {
			certPath := envOr("BRAGI_TLS_CERT", "data/tls/bragi.crt")
			keyPath := envOr("BRAGI_TLS_KEY", "data/tls/bragi.key")
			if err := utils.EnsureSelfSignedCert(certPath, keyPath, "localhost"); err != nil {
				l.Error("tls_cert_error", "err", err)
				os.Exit(1)
			}
			err = srv.ListenAndServeTLS(certPath, keyPath)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	l.Info("server_shutdown_begin")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "err", err)
	}
}
