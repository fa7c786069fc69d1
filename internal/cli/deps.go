package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/rsilvagit/jobboard/internal/cache"
	"github.com/rsilvagit/jobboard/internal/config"
	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/httpclient"
	"github.com/rsilvagit/jobboard/internal/importer"
	"github.com/rsilvagit/jobboard/internal/listing"
	"github.com/rsilvagit/jobboard/internal/metrics"
	"github.com/rsilvagit/jobboard/internal/store"
)

// openStore returns Postgres when database.url is set and the in-process
// store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.Database.URL == "" {
		log.Warn("database.url not set, using in-memory job store")
		return store.NewMemory(), nil
	}

	pg, err := store.OpenPostgres(ctx, store.PostgresConfig{
		DSN:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
	}
	log.Info("connected to postgres")
	return pg, nil
}

// openCache returns Redis when redis.url is set. An unreachable Redis is
// logged and kept: the cache layer treats its failures as misses, so the
// API keeps serving from the store.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Backend, error) {
	if cfg.Redis.URL == "" {
		log.Info("redis.url not set, using in-process cache")
		return cache.NewMemory(cfg.Cache.Sweep), nil
	}

	rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
	if rdb == nil {
		return nil, err
	}
	if err != nil {
		log.Warn("redis unreachable, serving uncached until it recovers", zap.Error(err))
	} else {
		log.Info("connected to redis")
	}
	return rdb, nil
}

// stack is the store, cache and service every data command needs.
type stack struct {
	store store.Store
	cache *cache.Layer
	svc   *listing.Service
}

func openStack(ctx context.Context, e *env, m *metrics.Collector) (*stack, error) {
	st, err := openStore(ctx, e.cfg, e.log)
	if err != nil {
		return nil, err
	}
	backend, err := openCache(ctx, e.cfg, e.log)
	if err != nil {
		st.Close()
		return nil, err
	}
	layer := cache.NewLayer(backend, e.log, m)
	svc := listing.NewService(st, layer, listing.Options{
		TTL:     e.cfg.Cache.TTL,
		Logger:  e.log,
		Metrics: m,
	})
	return &stack{store: st, cache: layer, svc: svc}, nil
}

func (s *stack) Close() {
	s.cache.Close()
	s.store.Close()
}

func newImporter(e *env, svc *listing.Service) (*importer.Importer, error) {
	client, err := httpclient.New(httpclient.Options{
		ProxyURL: e.cfg.Importer.ProxyURL,
		Timeout:  e.cfg.Importer.Timeout,
		Logger:   e.log,
	})
	if err != nil {
		return nil, err
	}
	sources, err := importer.Registry(e.cfg.Importer.Sources, e.cfg.Importer.Query, e.cfg.Importer.Location, client)
	if err != nil {
		return nil, err
	}
	return importer.New(svc, sources, filter.FromQuery(e.cfg.Importer.Type), e.log), nil
}
