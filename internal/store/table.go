package store

import (
	"database/sql"
	"strings"
)

const schemaVersion = 2

// Migrate brings the schema to schemaVersion, tracked in PRAGMA user_version.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL,
  posting_date TEXT NOT NULL,
  job_type TEXT NOT NULL,
  natural_key TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS job_tags (
  job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  tag TEXT NOT NULL,
  PRIMARY KEY (job_id, tag)
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_natural_key
ON jobs(natural_key);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_posting_date
ON jobs(posting_date);
`); err != nil {
		return err
	}

	if v < 2 {
		if err := addTagFold(tx); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 2;`); err != nil {
		return err
	}

	return tx.Commit()
}

// ---- Schema v2: tag_fold ----

// addTagFold adds the case-folded tag used by the tag filter. SQLite's lower()
// folds ASCII only, so the column is filled from Go.
func addTagFold(tx *sql.Tx) error {
	if _, err := tx.Exec(`ALTER TABLE job_tags ADD COLUMN tag_fold TEXT NOT NULL DEFAULT '';`); err != nil {
		return err
	}
	rows, err := tx.Query(`SELECT job_id, tag FROM job_tags;`)
	if err != nil {
		return err
	}
	type row struct {
		id  int64
		tag string
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.tag); err != nil {
			rows.Close()
			return err
		}
		all = append(all, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, r := range all {
		if _, err := tx.Exec(`UPDATE job_tags SET tag_fold = ? WHERE job_id = ? AND tag = ?;`,
			strings.ToLower(r.tag), r.id, r.tag); err != nil {
			return err
		}
	}
	return nil
}
