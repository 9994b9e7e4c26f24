package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jobboard/internal/domain"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const jobColumns = `j.id, j.title, j.company, j.location, j.posting_date, j.job_type`

func (s *SQLite) Get(ctx context.Context, id int64) (domain.JobListing, error) {
	return getJob(ctx, s.db, id)
}

// FindByNaturalKey looks a listing up by the same key Create enforces.
func (s *SQLite) FindByNaturalKey(ctx context.Context, title, company string) (domain.JobListing, bool, error) {
	key := s.opts.Keys.NaturalKey(title, company)

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM jobs WHERE natural_key = ? LIMIT 1;`, key,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.JobListing{}, false, nil
	}
	if err != nil {
		return domain.JobListing{}, false, err
	}

	j, err := getJob(ctx, s.db, id)
	if errors.Is(err, domain.ErrNotFound) {
		// deleted between the two reads
		return domain.JobListing{}, false, nil
	}
	if err != nil {
		return domain.JobListing{}, false, err
	}
	return j, true, nil
}

// List returns the matching listings ordered by posting date, ties in
// insertion order. Rows and tags are read in one transaction.
func (s *SQLite) List(ctx context.Context, f Filter, sort Sort) ([]domain.JobListing, error) {
	var (
		where []string
		args  []any
	)
	if v := strings.TrimSpace(f.JobType); v != "" {
		where = append(where, "j.job_type = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(f.Location); v != "" {
		where = append(where, "j.location = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(f.Tag); v != "" {
		where = append(where, `EXISTS (
  SELECT 1 FROM job_tags t
  WHERE t.job_id = j.id AND instr(t.tag_fold, ?) > 0
)`)
		args = append(args, strings.ToLower(v))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	// whitelist order (prevents SQL injection)
	order := "DESC"
	if sort == SortPostingDateAsc {
		order = "ASC"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
SELECT %s
FROM jobs j
%s
ORDER BY j.posting_date %s, j.id ASC;
`, jobColumns, whereSQL, order)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out, err := scanJobs(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	tagQuery := fmt.Sprintf(`
SELECT t.job_id, t.tag
FROM job_tags t
JOIN jobs j ON j.id = t.job_id
%s
ORDER BY t.job_id, t.position;
`, whereSQL)
	tags, err := loadTags(ctx, tx, tagQuery, args...)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tags = domain.NewTagSet(tags[out[i].ID]...)
	}
	return out, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n)
	return n, err
}

func getJob(ctx context.Context, q queryer, id int64) (domain.JobListing, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = ?;`, id)
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

	tags, err := loadTags(ctx, q,
		`SELECT job_id, tag FROM job_tags WHERE job_id = ? ORDER BY position;`, id)
	if err != nil {
		return domain.JobListing{}, err
	}
	j := jobs[0]
	j.Tags = domain.NewTagSet(tags[id]...)
	return j, nil
}

func scanJobs(rows *sql.Rows) ([]domain.JobListing, error) {
	defer rows.Close()

	out := []domain.JobListing{}
	for rows.Next() {
		var j domain.JobListing
		var dateStr string
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &dateStr, &j.JobType); err != nil {
			return nil, err
		}
		j.PostingDate = parseStoredDate(dateStr)
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func loadTags(ctx context.Context, q queryer, query string, args ...any) (map[int64][]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
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
