// Package http assembles the service's router: the document API, the
// middleware chain, and the operational endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quire/internal/kv"
	"quire/internal/platform/metrics"
	"quire/internal/platform/middleware"
	"quire/internal/registry/handler"
	"quire/pkg/platform/httputil"
)

// NewRouter builds the full HTTP handler. metrics may be nil in tests.
func NewRouter(h *handler.Handler, store kv.Store, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	if m != nil {
		r.Use(middleware.Latency(m))
	}

	h.Register(r)

	r.Get("/healthz", handleHealthz(store))
	r.Handle("/metrics", promhttp.Handler())

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func handleHealthz(store kv.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
