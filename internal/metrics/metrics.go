// Package metrics exposes Prometheus counters for the cache layer, the job
// store and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups every metric the service records.
type Collector struct {
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheErrors  *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewCollector creates the metrics and registers them with reg.
// Passing a fresh prometheus.NewRegistry() keeps tests isolated.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_cache_hits_total",
			Help: "Total number of cache lookups served from the cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_cache_misses_total",
			Help: "Total number of cache lookups that fell through to the store",
		}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_cache_errors_total",
			Help: "Cache backend failures absorbed as misses",
		}, []string{"op"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_store_errors_total",
			Help: "Job store failures surfaced to clients",
		}, []string{"op"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		gatherer: reg,
	}

	reg.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.cacheErrors,
		c.storeErrors,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

// Nop returns a collector bound to a private registry.
func Nop() *Collector {
	return NewCollector(prometheus.NewRegistry())
}

func (c *Collector) CacheHit()  { c.cacheHits.Inc() }
func (c *Collector) CacheMiss() { c.cacheMisses.Inc() }

// CacheError records a backend failure for op (get, set, flush).
func (c *Collector) CacheError(op string) {
	c.cacheErrors.WithLabelValues(op).Inc()
}

func (c *Collector) StoreError(op string) {
	c.storeErrors.WithLabelValues(op).Inc()
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(route string, code int, d time.Duration) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
