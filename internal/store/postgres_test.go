package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/model"
)

var columnNames = []string{
	"id", "slug", "title", "company", "img", "description", "location", "is_wfh", "tags", "apply_url",
	"type", "posted_at", "role", "qualification", "batch", "experience", "salary", "last_date",
}

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func jobRow(rows *sqlmock.Rows, id, slug string, typ model.Type, posted time.Time, last any) *sqlmock.Rows {
	return rows.AddRow(id, slug, "Backend Developer", "Acme", "", "desc", "Remote", true, "{go,sql}", "",
		string(typ), posted, "", "", "", "", "", last)
}

func TestPostgresFindWithTypeFilter(t *testing.T) {
	p, mock := newMock(t)
	posted := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := jobRow(sqlmock.NewRows(columnNames), "65a1b2c3d4e5f60718293a4b", "backend-developer-x1", model.TypeJob, posted, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE type = $1 ORDER BY posted_at DESC, id DESC LIMIT $2 OFFSET $3")).
		WithArgs("job", 9, 18).
		WillReturnRows(rows)

	jobs, err := p.Find(context.Background(), filter.Options{Type: model.TypeJob}, 18, 9)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "backend-developer-x1", jobs[0].Slug)
	assert.Equal(t, []string{"go", "sql"}, jobs[0].Tags)
	assert.Equal(t, model.TypeJob, jobs[0].Type)
	assert.Nil(t, jobs[0].LastDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindWithoutFilter(t *testing.T) {
	p, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs ORDER BY posted_at DESC, id DESC LIMIT $1 OFFSET $2")).
		WithArgs(9, 0).
		WillReturnRows(sqlmock.NewRows(columnNames))

	jobs, err := p.Find(context.Background(), filter.Options{}, 0, 9)
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCount(t *testing.T) {
	p, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM jobs WHERE type = $1")).
		WithArgs("internship").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	total, err := p.Count(context.Background(), filter.Options{Type: model.TypeInternship})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindBySlugNotFound(t *testing.T) {
	p, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE slug = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := p.FindBySlug(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDWithLastDate(t *testing.T) {
	p, mock := newMock(t)
	last := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := "65a1b2c3d4e5f60718293a4b"

	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(jobRow(sqlmock.NewRows(columnNames), id, "old-job-1", model.TypeInternship, last.Add(-time.Hour), last))

	j, err := p.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, j.LastDate)
	assert.True(t, j.LastDate.Equal(last))
	assert.Equal(t, model.TypeInternship, j.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreErrorIsWrapped(t *testing.T) {
	p, mock := newMock(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM jobs")).WillReturnError(boom)

	_, err := p.Count(context.Background(), filter.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPostgresInsert(t *testing.T) {
	p, mock := newMock(t)
	j := model.Job{Title: "Backend Developer", Tags: []string{"go"}}
	require.NoError(t, j.Prepare(time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs (")).
		WithArgs(j.ID, j.Slug, j.Title, "", "", "", "", false, sqlmock.AnyArg(), "", "job", j.PostedAt,
			"", "", "", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, p.Insert(context.Background(), j))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertUniqueViolation(t *testing.T) {
	p, mock := newMock(t)
	j := model.Job{Title: "Dup"}
	require.NoError(t, j.Prepare(time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs (")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := p.Insert(context.Background(), j)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestPostgresActive(t *testing.T) {
	p, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE last_date IS NULL OR last_date >= $1")).
		WithArgs(now).
		WillReturnRows(jobRow(sqlmock.NewRows(columnNames), "65a1b2c3d4e5f60718293a4b", "a-1", model.TypeJob, now, nil))

	jobs, err := p.Active(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	p, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS jobs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, p.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
