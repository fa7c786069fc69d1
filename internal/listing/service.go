// Package listing serves paginated job listings and single job lookups
// through a read-through cache in front of the job store.
package listing

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rsilvagit/jobboard/internal/cache"
	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/metrics"
	"github.com/rsilvagit/jobboard/internal/model"
	"github.com/rsilvagit/jobboard/internal/store"
)

const (
	DefaultPage  = 1
	DefaultLimit = 9
	MaxLimit     = 50
	MaxPage      = math.MaxInt32

	DefaultTTL = 600 * time.Second
)

// ErrStore marks a job store failure. Its cause is never shown to clients.
var ErrStore = errors.New("listing: job store unavailable")

// Options configures a Service.
type Options struct {
	TTL     time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Now     func() time.Time
}

// Service composes the job store and the cache layer.
type Service struct {
	store   store.Store
	cache   *cache.Layer
	ttl     time.Duration
	log     *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

func NewService(s store.Store, c *cache.Layer, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:   s,
		cache:   c,
		ttl:     opts.TTL,
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
}

// Query is a normalized listing request.
type Query struct {
	Page   int
	Limit  int
	Filter filter.Options
}

// NewQuery clamps raw parameters: page defaults to 1 and lies in
// [1, MaxPage], limit defaults to 9 and is at most 50. Nothing is rejected.
// MaxPage keeps Skip from overflowing.
func NewQuery(page, limit int, typ string) Query {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Query{Page: page, Limit: limit, Filter: filter.FromQuery(typ)}
}

// ParseQuery is NewQuery over string parameters, e.g. from a URL.
func ParseQuery(page, limit, typ string) Query {
	p, _ := strconv.Atoi(page)
	l, _ := strconv.Atoi(limit)
	return NewQuery(p, l, typ)
}

// Skip is the number of records before this page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// CacheKey is jobs:{page}:{limit}:{type|all}.
func (q Query) CacheKey() string {
	return "jobs:" + strconv.Itoa(q.Page) + ":" + strconv.Itoa(q.Limit) + ":" + q.Filter.Segment()
}

func jobKey(slug string) string {
	return "job:" + slug
}

// List returns the serialized page envelope for q. A cache hit returns the
// stored bytes unchanged without touching the store.
func (s *Service) List(ctx context.Context, q Query) ([]byte, error) {
	key := q.CacheKey()
	if data, ok := s.cache.Get(ctx, key); ok {
		return data, nil
	}

	var (
		jobs  []model.Job
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = s.store.Find(gctx, q.Filter, q.Skip(), q.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.StoreError("list")
		s.log.Error("list jobs failed", zap.String("key", key), zap.Error(err))
		return nil, errors.Mark(errors.Wrap(err, "listing: list"), ErrStore)
	}
	if jobs == nil {
		jobs = []model.Job{}
	}

	data, err := json.Marshal(model.Page{
		Success:    true,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: model.TotalPages(total, q.Limit),
		Jobs:       jobs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing: marshal page")
	}

	s.cache.Set(ctx, key, data, s.ttl)
	return data, nil
}

// Outcome classifies a single job lookup.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	Expired
	Redirect
)

// Lookup is the result of GetBySlug. Body is set for Found, Location for
// Redirect.
type Lookup struct {
	Outcome  Outcome
	Body     []byte
	Location string
}

// GetBySlug resolves a job by slug. A 24 hex segment that is not a slug
// but names an existing record yields a permanent redirect to its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Lookup, error) {
	key := jobKey(slug)
	if data, ok := s.cache.Get(ctx, key); ok {
		return Lookup{Outcome: Found, Body: data}, nil
	}

	job, err := s.store.FindBySlug(ctx, slug)
	switch {
	case err == nil:
		now := s.now()
		if job.Expired(now) {
			return Lookup{Outcome: Expired}, nil
		}
		data, err := json.Marshal(model.Single{Status: model.StatusSuccess, Job: job})
		if err != nil {
			return Lookup{}, errors.Wrap(err, "listing: marshal job")
		}
		if ttl := s.cacheTTL(job, now); ttl > 0 {
			s.cache.Set(ctx, key, data, ttl)
		}
		return Lookup{Outcome: Found, Body: data}, nil
	case !errors.Is(err, store.ErrNotFound):
		return Lookup{}, s.storeFailure("get_by_slug", slug, err)
	}

	if !model.IsID(slug) {
		return Lookup{Outcome: NotFound}, nil
	}

	job, err = s.store.FindByID(ctx, strings.ToLower(slug))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Lookup{Outcome: NotFound}, nil
	case err != nil:
		return Lookup{}, s.storeFailure("get_by_id", slug, err)
	case job.Slug == "":
		return Lookup{Outcome: NotFound}, nil
	}
	return Lookup{Outcome: Redirect, Location: "/api/jobs/" + job.Slug}, nil
}

// cacheTTL keeps a cached single job from outliving its last date. Zero
// means the job must not be cached; a zero TTL never expires in Redis.
func (s *Service) cacheTTL(job *model.Job, now time.Time) time.Duration {
	if job.LastDate == nil {
		return s.ttl
	}
	left := job.LastDate.Sub(now)
	if left <= 0 {
		return 0
	}
	if left < s.ttl {
		return left
	}
	return s.ttl
}

func (s *Service) storeFailure(op, slug string, err error) error {
	s.metrics.StoreError(op)
	s.log.Error("job lookup failed", zap.String("op", op), zap.String("slug", slug), zap.Error(err))
	return errors.Mark(errors.Wrapf(err, "listing: %s", op), ErrStore)
}

// FlushCache drops every cached listing and job.
func (s *Service) FlushCache(ctx context.Context) {
	s.cache.FlushAll(ctx)
}

// Create validates and inserts a job, then flushes the cache so the next
// listing reflects it.
func (s *Service) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	if err := job.Prepare(s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, job); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		s.metrics.StoreError("insert")
		return nil, errors.Mark(errors.Wrap(err, "listing: create"), ErrStore)
	}
	s.log.Info("job created", zap.String("id", job.ID), zap.String("slug", job.Slug))
	s.FlushCache(ctx)
	return &job, nil
}

// CreateMany inserts jobs in order. Invalid postings and ones already
// stored are skipped. The cache is flushed once if anything was created,
// including when a store failure stops the batch early.
func (s *Service) CreateMany(ctx context.Context, jobs []model.Job) (created, skipped int, err error) {
	defer func() {
		if created > 0 {
			s.FlushCache(ctx)
		}
	}()

	for _, job := range jobs {
		if err := job.Prepare(s.now()); err != nil {
			s.log.Debug("skipping invalid job", zap.String("title", job.Title), zap.Error(err))
			skipped++
			continue
		}
		if err := s.store.Insert(ctx, job); err != nil {
			if errors.Is(err, store.ErrConflict) {
				skipped++
				continue
			}
			s.metrics.StoreError("insert")
			return created, skipped, errors.Mark(errors.Wrap(err, "listing: create many"), ErrStore)
		}
		created++
	}
	return created, skipped, nil
}
