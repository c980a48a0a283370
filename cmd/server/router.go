package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"primelab/internal/platform/metrics"
	"primelab/internal/platform/ratelimit"
	"primelab/internal/primality/handler"
	"primelab/pkg/platform/httputil"
	"primelab/pkg/platform/middleware/metadata"
	"primelab/pkg/platform/middleware/requestid"
	"primelab/pkg/platform/middleware/requestlog"
	"primelab/pkg/platform/middleware/requesttime"
)

// healthCheck pings one backing dependency.
type healthCheck func(ctx context.Context) error

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// newRouter assembles the middleware chain and mounts every route. A nil
// limiter leaves the primality routes unthrottled. trustProxyHeaders keys the
// limiter by X-Forwarded-For instead of the peer address.
func newRouter(
	h *handler.Handler,
	limiter *ratelimit.Limiter,
	trustProxyHeaders bool,
	httpMetrics *metrics.Metrics,
	gatherer prometheus.Gatherer,
	checks map[string]healthCheck,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(trustProxyHeaders))
	r.Use(requestlog.Middleware(logger))
	r.Use(middleware.Recoverer)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", healthHandler(checks))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware(logger))
		}
		h.Register(r)
	})
	return r
}

func healthHandler(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
