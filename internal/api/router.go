// Package api exposes the gatekeeper over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/gatekeeper"
	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/router"
)

// Brain is the read and learn surface of the gatekeeper the API needs.
type Brain interface {
	Ready() bool
	Key() string
	Explain(raw string) gatekeeper.Decision
	Stats() model.BrainStats
	History(p gatekeeper.MemoryParams) []model.MemoryRecord
	Learn(ctx context.Context, raw string, category model.Category, response string, source model.Source) error
}

// NewRouter creates the chi router with all routes and middleware.
// A nil gatherer disables /metrics.
func NewRouter(gk Brain, rt *router.Router, gatherer prometheus.Gatherer, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	h := &Handler{gk: gk, rt: rt, log: logger}

	r.Get("/health", h.Health)
	r.Post("/ask", h.Ask)
	r.Post("/feedback", h.Feedback)
	r.Get("/classify", h.Classify)
	r.Route("/brain", func(r chi.Router) {
		r.Get("/", h.Stats)
		r.Get("/memory", h.Memory)
		r.Post("/learn", h.Learn)
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("gatekeeper server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
