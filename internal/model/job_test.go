package model

import (
	"regexp"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"":            TypeJob,
		"job":         TypeJob,
		"JOB":         TypeJob,
		" internship": TypeInternship,
	}
	for in, want := range cases {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseType("freelance")
	assert.True(t, errors.Is(err, ErrInvalidType))
}

func TestSlugShape(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	slug := Slug("Backend Developer", now, NewID(now))
	assert.Regexp(t, regexp.MustCompile(`^backend-developer-[0-9a-z]+$`), slug)

	assert.Equal(t, "job-", Slug("!!!", now, "")[:4])
	assert.Regexp(t, `^c-go-senior-`, Slug("  C++ / Go (Senior)  ", now, NewID(now)))
}

func TestSlugUniqueWithinSameMillisecond(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := Slug("Backend Developer", now, NewID(now))
		require.False(t, seen[s], "duplicate slug %s", s)
		seen[s] = true
	}
}

func TestNewIDShape(t *testing.T) {
	now := time.Now()
	a, b := NewID(now), NewID(now)
	assert.True(t, IsID(a))
	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)

	assert.False(t, IsID("backend-developer-abc"))
	assert.False(t, IsID("0123456789abcdef0123456"))
	assert.True(t, IsID("0123456789ABCDEF01234567"))
}

func TestPrepare(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	j := Job{Title: "Data Intern", Type: "internship"}
	require.NoError(t, j.Prepare(now))
	assert.True(t, IsID(j.ID))
	assert.Equal(t, now, j.PostedAt)
	assert.Equal(t, TypeInternship, j.Type)
	assert.Regexp(t, `^data-intern-`, j.Slug)
	assert.NotNil(t, j.Tags)

	kept := Job{Title: "Other", Slug: "fixed-slug"}
	require.NoError(t, kept.Prepare(now))
	assert.Equal(t, "fixed-slug", kept.Slug)
	assert.Equal(t, TypeJob, kept.Type)

	assert.Error(t, (&Job{}).Prepare(now))
	assert.Error(t, (&Job{Title: "x", Type: "gig"}).Prepare(now))
}

func TestExpired(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	assert.False(t, Job{}.Expired(now))
	assert.True(t, Job{LastDate: &yesterday}.Expired(now))
	assert.False(t, Job{LastDate: &tomorrow}.Expired(now))
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 9, 0},
		{1, 9, 1},
		{9, 9, 1},
		{10, 9, 2},
		{100, 50, 2},
		{101, 50, 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TotalPages(c.total, c.limit), "total=%d limit=%d", c.total, c.limit)
	}
}
