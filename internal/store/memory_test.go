package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/model"
)

func seed(t *testing.T, m *Memory, n int, typ model.Type, base time.Time) []model.Job {
	t.Helper()
	var out []model.Job
	for i := 0; i < n; i++ {
		j := model.Job{Title: fmt.Sprintf("%s %d", typ, i), Type: typ}
		require.NoError(t, j.Prepare(base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, m.Insert(context.Background(), j))
		out = append(out, j)
	}
	return out
}

func TestMemoryFindOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	seed(t, m, 5, model.TypeJob, base)
	seed(t, m, 3, model.TypeInternship, base.Add(30*time.Second))

	all, err := m.Find(ctx, filter.Options{}, 0, 50)
	require.NoError(t, err)
	require.Len(t, all, 8)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].PostedAt.After(all[i-1].PostedAt), "index %d out of order", i)
	}

	interns, err := m.Find(ctx, filter.Options{Type: model.TypeInternship}, 0, 50)
	require.NoError(t, err)
	assert.Len(t, interns, 3)

	total, err := m.Count(ctx, filter.Options{Type: model.TypeJob})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestMemoryFindPaging(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seed(t, m, 7, model.TypeJob, time.Now())

	page, err := m.Find(ctx, filter.Options{}, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	last, err := m.Find(ctx, filter.Options{}, 6, 3)
	require.NoError(t, err)
	assert.Len(t, last, 1)

	past, err := m.Find(ctx, filter.Options{}, 9, 3)
	require.NoError(t, err)
	assert.NotNil(t, past)
	assert.Empty(t, past)
}

func TestMemoryLookups(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	jobs := seed(t, m, 2, model.TypeJob, time.Now())

	got, err := m.FindBySlug(ctx, jobs[1].Slug)
	require.NoError(t, err)
	assert.Equal(t, jobs[1].ID, got.ID)

	got, err = m.FindByID(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, jobs[0].Slug, got.Slug)

	_, err = m.FindBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryInsertRejectsDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	jobs := seed(t, m, 1, model.TypeJob, time.Now())

	dup := model.Job{Title: "other", Slug: jobs[0].Slug}
	require.NoError(t, dup.Prepare(time.Now()))
	err := m.Insert(ctx, dup)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestMemoryActiveSkipsExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	for i, last := range []*time.Time{nil, &yesterday, &tomorrow} {
		j := model.Job{Title: fmt.Sprintf("job %d", i), LastDate: last}
		require.NoError(t, j.Prepare(now))
		require.NoError(t, m.Insert(ctx, j))
	}

	active, err := m.Active(ctx, now)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, j := range active {
		assert.False(t, j.Expired(now))
	}
}

func TestMemoryFindNegativeSkip(t *testing.T) {
	m := NewMemory()
	j := model.Job{Title: "Go Developer"}
	require.NoError(t, j.Prepare(time.Now()))
	require.NoError(t, m.Insert(context.Background(), j))

	jobs, err := m.Find(context.Background(), filter.Options{}, -50, 10)
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}
