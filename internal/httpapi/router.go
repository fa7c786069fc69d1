// Package httpapi exposes the listing service over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rsilvagit/jobboard/internal/listing"
	"github.com/rsilvagit/jobboard/internal/metrics"
)

// Dependencies are the collaborators the router needs.
type Dependencies struct {
	Service     *listing.Service
	Logger      *zap.Logger
	Metrics     *metrics.Collector
	Limiter     *RateLimiter // nil disables rate limiting
	TrustProxy  bool         // key the limiter by X-Forwarded-For
	CacheMaxAge time.Duration
	BaseURL     string
	AdminToken  string
}

// NewRouter builds the full handler stack.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop()
	}
	h := &handlers{
		svc:        deps.Service,
		log:        deps.Logger,
		maxAge:     deps.CacheMaxAge,
		baseURL:    deps.BaseURL,
		adminToken: deps.AdminToken,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", h.ping)
	mux.HandleFunc("GET /api/jobs", h.listJobs)
	mux.HandleFunc("GET /api/jobs/{slug}", h.getJob)
	mux.HandleFunc("GET /api/admin/clear-cache", h.clearCache)
	mux.HandleFunc("GET /sitemap.xml", h.sitemap)
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	return Chain(mux,
		RequestID,
		Logging(deps.Logger),
		Recover(deps.Logger),
		RateLimit(deps.Limiter, deps.TrustProxy),
		Instrument(deps.Metrics),
	)
}
