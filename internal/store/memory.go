package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/model"
)

// Memory keeps jobs in a slice sorted by postedAt descending.
type Memory struct {
	mu   sync.RWMutex
	jobs []model.Job
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Find(_ context.Context, opts filter.Options, skip, limit int) ([]model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := filter.Apply(m.jobs, opts)
	if skip < 0 || skip >= len(matched) || limit <= 0 {
		return []model.Job{}, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]model.Job, end-skip)
	copy(out, matched[skip:end])
	return out, nil
}

func (m *Memory) Count(_ context.Context, opts filter.Options) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(filter.Apply(m.jobs, opts))), nil
}

func (m *Memory) FindBySlug(_ context.Context, slug string) (*model.Job, error) {
	return m.findBy(func(j model.Job) bool { return j.Slug == slug })
}

func (m *Memory) FindByID(_ context.Context, id string) (*model.Job, error) {
	return m.findBy(func(j model.Job) bool { return j.ID == id })
}

func (m *Memory) findBy(match func(model.Job) bool) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, j := range m.jobs {
		if match(j) {
			found := j
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Insert(_ context.Context, job model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, j := range m.jobs {
		if j.ID == job.ID || j.Slug == job.Slug {
			return errors.Wrapf(ErrConflict, "slug %q", job.Slug)
		}
	}
	m.jobs = append(m.jobs, job)
	sort.SliceStable(m.jobs, func(a, b int) bool {
		return m.jobs[a].PostedAt.After(m.jobs[b].PostedAt)
	})
	return nil
}

func (m *Memory) Active(_ context.Context, now time.Time) ([]model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Job{}
	for _, j := range m.jobs {
		if !j.Expired(now) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
