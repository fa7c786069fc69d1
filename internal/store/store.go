// Package store persists job postings.
package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/model"
)

var (
	// ErrNotFound indicates no job matches the slug or id.
	ErrNotFound = errors.New("store: job not found")
	// ErrConflict indicates a duplicate id or slug on insert.
	ErrConflict = errors.New("store: duplicate job")
)

// Store is the job collection. Implementations must be safe for
// concurrent use.
type Store interface {
	// Find returns jobs matching opts ordered by postedAt descending,
	// skipping skip records and returning at most limit.
	Find(ctx context.Context, opts filter.Options, skip, limit int) ([]model.Job, error)

	// Count returns the number of jobs matching opts.
	Count(ctx context.Context, opts filter.Options) (int64, error)

	FindBySlug(ctx context.Context, slug string) (*model.Job, error)
	FindByID(ctx context.Context, id string) (*model.Job, error)

	// Insert persists a prepared job. It never rewrites an existing slug.
	Insert(ctx context.Context, job model.Job) error

	// Active returns every job not expired at now, newest first.
	Active(ctx context.Context, now time.Time) ([]model.Job, error)

	Close() error
}
