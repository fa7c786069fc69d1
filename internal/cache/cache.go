package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rsilvagit/jobboard/internal/metrics"
)

// ErrMiss is returned by a Backend when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Backend is a TTL-capable key/value store. Get must never return a value
// whose TTL has elapsed.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushAll(ctx context.Context) error
	Close() error
}

// Layer sits in front of a Backend and absorbs its failures: any backend
// error is logged and counted, then reported to the caller as a miss.
type Layer struct {
	backend Backend
	log     *zap.Logger
	metrics *metrics.Collector
}

// NewLayer wraps backend. log and m may be nil.
func NewLayer(backend Backend, log *zap.Logger, m *metrics.Collector) *Layer {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Layer{backend: backend, log: log, metrics: m}
}

// Get returns the fresh value for key, or false on miss or backend failure.
func (l *Layer) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := l.backend.Get(ctx, key)
	switch {
	case err == nil:
		l.metrics.CacheHit()
		l.log.Debug("cache hit", zap.String("key", key))
		return data, true
	case errors.Is(err, ErrMiss):
	default:
		l.metrics.CacheError("get")
		l.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	l.metrics.CacheMiss()
	return nil, false
}

// Set stores value under key for ttl. Failures are logged and dropped.
func (l *Layer) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := l.backend.Set(ctx, key, value, ttl); err != nil {
		l.metrics.CacheError("set")
		l.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}
	l.log.Debug("cache set", zap.String("key", key), zap.Duration("ttl", ttl))
}

// FlushAll clears every entry. Failures are logged and dropped.
func (l *Layer) FlushAll(ctx context.Context) {
	if err := l.backend.FlushAll(ctx); err != nil {
		l.metrics.CacheError("flush")
		l.log.Warn("cache flush failed", zap.Error(err))
		return
	}
	l.log.Info("cache flushed")
}

// Close releases the backend connection.
func (l *Layer) Close() error {
	return l.backend.Close()
}
