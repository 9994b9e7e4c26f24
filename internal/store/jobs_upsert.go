package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/domain"
)

// Create validates f and inserts it. A natural-key collision returns
// domain.ErrDuplicate; the unique index makes that hold across concurrent
// writers, not just for callers that checked FindByNaturalKey first.
func (s *SQLite) Create(ctx context.Context, f domain.JobFields) (domain.JobListing, error) {
	j, key, err := s.opts.NewListing(f)
	if err != nil {
		return domain.JobListing{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.JobListing{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// relies on unique index on natural_key
	res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs (title, company, location, posting_date, job_type, natural_key, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
		j.Title, j.Company, j.Location, formatDate(j.PostingDate), j.JobType, key,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return domain.JobListing{}, fmt.Errorf("insert job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.JobListing{}, domain.ErrDuplicate
	}
	if j.ID, err = res.LastInsertId(); err != nil {
		return domain.JobListing{}, fmt.Errorf("insert job: %w", err)
	}

	if err := replaceTags(ctx, tx, j.ID, j.Tags); err != nil {
		return domain.JobListing{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.JobListing{}, fmt.Errorf("commit job: %w", err)
	}
	return j, nil
}

// Update applies p to the listing inside one transaction.
func (s *SQLite) Update(ctx context.Context, id int64, p domain.JobPatch) (domain.JobListing, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.JobListing{}, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := getJob(ctx, tx, id)
	if err != nil {
		return domain.JobListing{}, err
	}
	next, key, err := s.opts.ApplyPatch(cur, p)
	if err != nil {
		return domain.JobListing{}, err
	}

	var other int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM jobs WHERE natural_key = ? AND id != ? LIMIT 1;`, key, id,
	).Scan(&other)
	if err == nil {
		return domain.JobListing{}, domain.ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.JobListing{}, err
	}

	_, err = tx.ExecContext(ctx, `
UPDATE jobs
SET title = ?, company = ?, location = ?, posting_date = ?, job_type = ?, natural_key = ?
WHERE id = ?;`,
		next.Title, next.Company, next.Location, formatDate(next.PostingDate), next.JobType, key, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.JobListing{}, domain.ErrDuplicate
		}
		return domain.JobListing{}, fmt.Errorf("update job %d: %w", id, err)
	}

	if p.Tags != nil {
		if err := replaceTags(ctx, tx, id, next.Tags); err != nil {
			return domain.JobListing{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.JobListing{}, fmt.Errorf("commit job %d: %w", id, err)
	}
	return next, nil
}

func (s *SQLite) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM job_tags WHERE job_id = ?;`, id); err != nil {
		return fmt.Errorf("delete tags %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete job %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func replaceTags(ctx context.Context, tx *sql.Tx, id int64, tags domain.TagSet) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM job_tags WHERE job_id = ?;`, id); err != nil {
		return fmt.Errorf("clear tags %d: %w", id, err)
	}
	for i, t := range tags.Slice() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_tags (job_id, position, tag, tag_fold) VALUES (?, ?, ?, ?);`, id, i, t, strings.ToLower(t),
		); err != nil {
			return fmt.Errorf("insert tag %q: %w", t, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
