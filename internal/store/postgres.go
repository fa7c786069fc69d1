package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/model"
)

const jobColumns = `id, slug, title, company, img, description, location, is_wfh, tags, apply_url, type, posted_at, role, qualification, batch, experience, salary, last_date`

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY,
	slug          TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL,
	company       TEXT NOT NULL DEFAULT '',
	img           TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	location      TEXT NOT NULL DEFAULT '',
	is_wfh        BOOLEAN NOT NULL DEFAULT FALSE,
	tags          TEXT[] NOT NULL DEFAULT '{}',
	apply_url     TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT 'job' CHECK (type IN ('job', 'internship')),
	posted_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	role          TEXT NOT NULL DEFAULT '',
	qualification TEXT NOT NULL DEFAULT '',
	batch         TEXT NOT NULL DEFAULT '',
	experience    TEXT NOT NULL DEFAULT '',
	salary        TEXT NOT NULL DEFAULT '',
	last_date     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS jobs_posted_at_idx ON jobs (posted_at DESC);
CREATE INDEX IF NOT EXISTS jobs_type_idx ON jobs (type);
`

// PostgresConfig tunes the connection pool.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdle     time.Duration
	ConnMaxLifetime time.Duration
}

// Postgres is a Store backed by a jobs table.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens a pool through the pgx driver and pings it once.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "store: open postgres")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(cfg.ConnMaxIdle)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: postgres ping failed")
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an already opened handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the jobs table and its indexes when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "store: migrate")
	}
	return nil
}

func whereClause(opts filter.Options) (string, []any) {
	if opts.Type == "" {
		return "", nil
	}
	return " WHERE type = $1", []any{string(opts.Type)}
}

func (p *Postgres) Find(ctx context.Context, opts filter.Options, skip, limit int) ([]model.Job, error) {
	where, args := whereClause(opts)
	n := len(args)
	query := `SELECT ` + jobColumns + ` FROM jobs` + where +
		` ORDER BY posted_at DESC, id DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, skip)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "store: find jobs")
	}
	return scanJobs(rows)
}

func (p *Postgres) Count(ctx context.Context, opts filter.Options) (int64, error) {
	where, args := whereClause(opts)
	var total int64
	if err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "store: count jobs")
	}
	return total, nil
}

func (p *Postgres) FindBySlug(ctx context.Context, slug string) (*model.Job, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE slug = $1`, slug)
	return scanOne(row, "slug "+slug)
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*model.Job, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanOne(row, "id "+id)
}

func (p *Postgres) Insert(ctx context.Context, j model.Job) error {
	var lastDate sql.NullTime
	if j.LastDate != nil {
		lastDate = sql.NullTime{Time: *j.LastDate, Valid: true}
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		j.ID, j.Slug, j.Title, j.Company, j.Img, j.Description, j.Location, j.IsWFH, pq.Array(j.Tags),
		j.ApplyURL, string(j.Type), j.PostedAt, j.Role, j.Qualification, j.Batch, j.Experience, j.Salary, lastDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errors.Wrapf(ErrConflict, "slug %q", j.Slug)
		}
		return errors.Wrap(err, "store: insert job")
	}
	return nil
}

func (p *Postgres) Active(ctx context.Context, now time.Time) ([]model.Job, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs
		WHERE last_date IS NULL OR last_date >= $1 ORDER BY posted_at DESC, id DESC`, now)
	if err != nil {
		return nil, errors.Wrap(err, "store: active jobs")
	}
	return scanJobs(rows)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (model.Job, error) {
	var (
		j        model.Job
		typ      string
		lastDate sql.NullTime
	)
	err := s.Scan(&j.ID, &j.Slug, &j.Title, &j.Company, &j.Img, &j.Description, &j.Location, &j.IsWFH,
		pq.Array(&j.Tags), &j.ApplyURL, &typ, &j.PostedAt, &j.Role, &j.Qualification, &j.Batch,
		&j.Experience, &j.Salary, &lastDate)
	if err != nil {
		return j, err
	}
	j.Type = model.Type(typ)
	if lastDate.Valid {
		t := lastDate.Time
		j.LastDate = &t
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	return j, nil
}

func scanOne(row *sql.Row, what string) (*model.Job, error) {
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrNotFound, what)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "store: load job by %s", what)
	}
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]model.Job, error) {
	defer rows.Close()
	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "store: scan job")
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "store: iterate jobs")
	}
	return jobs, nil
}
