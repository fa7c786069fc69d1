package listing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsilvagit/jobboard/internal/cache"
	"github.com/rsilvagit/jobboard/internal/model"
)

func TestSitemapListsOnlyActiveJobs(t *testing.T) {
	f := newFixture(t, cache.NewMemory(0))
	ctx := context.Background()
	yesterday := fixedNow.Add(-24 * time.Hour)
	nextWeek := fixedNow.Add(7 * 24 * time.Hour)

	open, err := f.svc.Create(ctx, model.Job{Title: "Open role", LastDate: &nextWeek})
	require.NoError(t, err)
	evergreen, err := f.svc.Create(ctx, model.Job{Title: "Evergreen"})
	require.NoError(t, err)
	closed, err := f.svc.Create(ctx, model.Job{Title: "Closed role", LastDate: &yesterday})
	require.NoError(t, err)

	out, err := f.svc.Sitemap(ctx, "https://example.com/")
	require.NoError(t, err)
	body := string(out)

	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, body, "<loc>https://example.com/jobs/"+open.Slug+"</loc>")
	assert.Contains(t, body, "<loc>https://example.com/jobs/"+evergreen.Slug+"</loc>")
	assert.NotContains(t, body, closed.Slug)
	assert.Contains(t, body, "<lastmod>2026-06-15</lastmod>")
}
