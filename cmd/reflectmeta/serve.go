package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta/api"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta/config"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta/metrics"
)

func NewServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the metadata HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []config.Option{config.WithEnv()}
			if port != "" {
				opts = append(opts, config.WithPort(port))
			}
			cfg, err := config.Load(opts...)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides REFLECTMETA_PORT)")

	return cmd
}

func newLogger(cfg *config.ServerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func runServer(ctx context.Context, cfg *config.ServerConfig) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	server, err := NewHTTPServer(reflectmeta.New(reflectmeta.WithLogger(logger)), cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Metadata server starting", "port", cfg.Port, "environment", cfg.Environment, "metrics", cfg.EnableMetrics)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}

// HTTPServer wraps a metadata store for HTTP access
type HTTPServer struct {
	store    *reflectmeta.Store
	config   *config.ServerConfig
	registry *prometheus.Registry
}

// NewHTTPServer creates a new HTTP server wrapper. When metrics are enabled the
// store is instrumented against registry.
func NewHTTPServer(store *reflectmeta.Store, cfg *config.ServerConfig, registry *prometheus.Registry) (*HTTPServer, error) {
	if cfg.EnableMetrics {
		if _, err := metrics.Instrument(store, registry); err != nil {
			return nil, fmt.Errorf("failed to instrument store: %w", err)
		}
	}

	return &HTTPServer{
		store:    store,
		config:   cfg,
		registry: registry,
	}, nil
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if s.config.Environment == "development" {
		r.Use(middleware.Logger)
	}

	r.Get("/health", s.handleHealth)
	if s.config.EnableMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/targets", api.NewMetadataHandler(s.store).Routes())
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	render.JSON(w, r, map[string]any{
		"status":      "healthy",
		"environment": s.config.Environment,
		"targets":     stats.Targets,
		"slots":       stats.Slots,
	})
}
