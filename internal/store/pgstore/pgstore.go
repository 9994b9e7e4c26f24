// Package pgstore is the PostgreSQL implementation of store.Store.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard/internal/domain"
	"jobboard/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
	opts store.Options
}

var _ store.Store = (*Store)(nil)

// Config is the connection setup; Password, when set, overrides the DSN's.
type Config struct {
	DSN        string
	Password   string
	MaxConns   int
	ViaBouncer bool
}

// Open connects, pings and migrates.
func Open(ctx context.Context, c Config, opts store.Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 4
	}
	cfg.MaxConns = int32(c.MaxConns)
	if c.Password != "" {
		cfg.ConnConfig.Password = c.Password
	}
	if c.ViaBouncer {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{pool: pool, opts: opts}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const schemaVersion = 2

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// serialize concurrent migrators
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(7305214)`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INT NOT NULL)`); err != nil {
		return err
	}
	var v int
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	if err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit(ctx)
	}

	if v < 1 {
		if _, err := tx.Exec(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL,
  posting_date DATE NOT NULL,
  job_type TEXT NOT NULL,
  natural_key TEXT NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS job_tags (
  job_id BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  position INT NOT NULL,
  tag TEXT NOT NULL,
  PRIMARY KEY (job_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_jobs_posting_date ON jobs(posting_date);
`); err != nil {
			return err
		}
	}
	if v < 2 {
		// tag_fold holds strings.ToLower(tag); rows written before it are
		// backfilled with lower().
		if _, err := tx.Exec(ctx, `
ALTER TABLE job_tags ADD COLUMN IF NOT EXISTS tag_fold TEXT;
UPDATE job_tags SET tag_fold = lower(tag) WHERE tag_fold IS NULL;
ALTER TABLE job_tags ALTER COLUMN tag_fold SET NOT NULL;
`); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_version(version) VALUES ($1)`, schemaVersion); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Create(ctx context.Context, f domain.JobFields) (domain.JobListing, error) {
	j, key, err := s.opts.NewListing(f)
	if err != nil {
		return domain.JobListing{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.JobListing{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
INSERT INTO jobs (title, company, location, posting_date, job_type, natural_key)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (natural_key) DO NOTHING
RETURNING id`,
		j.Title, j.Company, j.Location, j.PostingDate, j.JobType, key,
	).Scan(&j.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.JobListing{}, domain.ErrDuplicate
	}
	if err != nil {
		return domain.JobListing{}, fmt.Errorf("insert job: %w", err)
	}

	if err := replaceTags(ctx, tx, j.ID, j.Tags); err != nil {
		return domain.JobListing{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.JobListing{}, fmt.Errorf("commit job: %w", err)
	}
	return j, nil
}

func (s *Store) FindByNaturalKey(ctx context.Context, title, company string) (domain.JobListing, bool, error) {
	key := s.opts.Keys.NaturalKey(title, company)
	rows, err := s.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.natural_key = $1`, key)
	if err != nil {
		return domain.JobListing{}, false, err
	}
	jobs, err := scanJobs(rows)
	if err != nil || len(jobs) == 0 {
		return domain.JobListing{}, false, err
	}
	tags, err := loadTags(ctx, s.pool, `SELECT job_id, tag FROM job_tags WHERE job_id = $1 ORDER BY position`, jobs[0].ID)
	if err != nil {
		return domain.JobListing{}, false, err
	}
	jobs[0].Tags = domain.NewTagSet(tags[jobs[0].ID]...)
	return jobs[0], true, nil
}

func (s *Store) Get(ctx context.Context, id int64) (domain.JobListing, error) {
	return getJob(ctx, s.pool, id, false)
}

func (s *Store) Update(ctx context.Context, id int64, p domain.JobPatch) (domain.JobListing, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.JobListing{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := getJob(ctx, tx, id, true)
	if err != nil {
		return domain.JobListing{}, err
	}
	next, key, err := s.opts.ApplyPatch(cur, p)
	if err != nil {
		return domain.JobListing{}, err
	}

	_, err = tx.Exec(ctx, `
UPDATE jobs
SET title = $1, company = $2, location = $3, posting_date = $4, job_type = $5, natural_key = $6
WHERE id = $7`,
		next.Title, next.Company, next.Location, next.PostingDate, next.JobType, key, id,
	)
	if isUniqueViolation(err) {
		return domain.JobListing{}, domain.ErrDuplicate
	}
	if err != nil {
		return domain.JobListing{}, fmt.Errorf("update job %d: %w", id, err)
	}
	if p.Tags != nil {
		if err := replaceTags(ctx, tx, id, next.Tags); err != nil {
			return domain.JobListing{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.JobListing{}, fmt.Errorf("commit job %d: %w", id, err)
	}
	return next, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, f store.Filter, sort store.Sort) ([]domain.JobListing, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v string) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if v := strings.TrimSpace(f.JobType); v != "" {
		add("j.job_type = $%d", v)
	}
	if v := strings.TrimSpace(f.Location); v != "" {
		add("j.location = $%d", v)
	}
	if v := strings.TrimSpace(f.Tag); v != "" {
		add(`EXISTS (SELECT 1 FROM job_tags t WHERE t.job_id = j.id AND strpos(t.tag_fold, $%d) > 0)`, strings.ToLower(v))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}
	order := "DESC"
	if sort == store.SortPostingDateAsc {
		order = "ASC"
	}

	// one snapshot for rows and their tags
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, fmt.Sprintf(`SELECT %s FROM jobs j %s ORDER BY j.posting_date %s, j.id ASC`,
		jobColumns, whereSQL, order), args...)
	if err != nil {
		return nil, err
	}
	out, err := scanJobs(rows)
	if err != nil || len(out) == 0 {
		return out, err
	}
	tags, err := loadTags(ctx, tx, fmt.Sprintf(`
SELECT t.job_id, t.tag FROM job_tags t JOIN jobs j ON j.id = t.job_id
%s ORDER BY t.job_id, t.position`, whereSQL), args...)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tags = domain.NewTagSet(tags[out[i].ID]...)
	}
	return out, tx.Commit(ctx)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const jobColumns = `j.id, j.title, j.company, j.location, j.posting_date, j.job_type`

func getJob(ctx context.Context, q querier, id int64, forUpdate bool) (domain.JobListing, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return domain.JobListing{}, err
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return domain.JobListing{}, err
	}
	if len(jobs) == 0 {
		return domain.JobListing{}, domain.ErrNotFound
	}
	tags, err := loadTags(ctx, q, `SELECT job_id, tag FROM job_tags WHERE job_id = $1 ORDER BY position`, id)
	if err != nil {
		return domain.JobListing{}, err
	}
	j := jobs[0]
	j.Tags = domain.NewTagSet(tags[id]...)
	return j, nil
}

func scanJobs(rows pgx.Rows) ([]domain.JobListing, error) {
	defer rows.Close()
	out := []domain.JobListing{}
	for rows.Next() {
		var j domain.JobListing
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.PostingDate, &j.JobType); err != nil {
			return nil, err
		}
		j.PostingDate = domain.DateOf(j.PostingDate)
		out = append(out, j)
	}
	return out, rows.Err()
}

func loadTags(ctx context.Context, q querier, query string, args ...any) (map[int64][]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		out[id] = append(out[id], tag)
	}
	return out, rows.Err()
}

func replaceTags(ctx context.Context, tx pgx.Tx, id int64, tags domain.TagSet) error {
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM job_tags WHERE job_id = $1`, id)
	for i, t := range tags.Slice() {
		b.Queue(`INSERT INTO job_tags (job_id, position, tag, tag_fold) VALUES ($1, $2, $3, $4)`, id, i, t, strings.ToLower(t))
	}
	br := tx.SendBatch(ctx, b)
	for k := 0; k < b.Len(); k++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("write tags %d: %w", id, err)
		}
	}
	return br.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
