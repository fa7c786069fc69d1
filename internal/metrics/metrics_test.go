package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()
	c.CacheError("get")
	c.StoreError("find")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheErrors.WithLabelValues("get")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.cacheErrors.WithLabelValues("set")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.storeErrors.WithLabelValues("find")))
}

func TestObserveRequest(t *testing.T) {
	c := Nop()

	assert.NotPanics(t, func() {
		c.ObserveRequest("/api/jobs", 200, 15*time.Millisecond)
		c.ObserveRequest("/api/jobs", 500, time.Second)
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("/api/jobs", "500")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := Nop()
	c.CacheHit()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobboard_cache_hits_total 1")
}
