package gate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServerConfig holds what the HTTP server is assembled from.
type ServerConfig struct {
	Listen      string
	MetricsPath string
	Metrics     http.Handler
	Gate        *Gate
	Upstream    http.Handler
	Logger      *slog.Logger
}

// Server exposes the gated upstream together with health and metrics endpoints.
type Server struct {
	cfg     ServerConfig
	handler http.Handler
}

// NewServer builds the router. Health and metrics endpoints bypass the gate.
func NewServer(cfg ServerConfig) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.Gate.Wrap)
		r.Handle("/*", cfg.Upstream)
	})

	return &Server{
		cfg:     cfg,
		handler: otelhttp.NewHandler(r, "apigate"),
	}
}

// Handler returns the root handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("starting gate",
			"listen", s.cfg.Listen,
			"metrics", s.cfg.MetricsPath,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
