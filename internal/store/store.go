// Package store persists canonical job listings and enforces the natural-key
// dedup rule at write time.
package store

import (
	"context"
	"strings"

	"jobboard/internal/domain"
)

// Store is the listing collection shared by the HTTP API and ingestion runs.
type Store interface {
	Create(ctx context.Context, f domain.JobFields) (domain.JobListing, error)
	FindByNaturalKey(ctx context.Context, title, company string) (domain.JobListing, bool, error)
	Get(ctx context.Context, id int64) (domain.JobListing, error)
	Update(ctx context.Context, id int64, p domain.JobPatch) (domain.JobListing, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter, s Sort) ([]domain.JobListing, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Filter narrows List. Empty fields do not filter.
type Filter struct {
	JobType  string // exact
	Location string // exact
	Tag      string // case-insensitive substring of any tag
}

type Sort int

const (
	SortPostingDateDesc Sort = iota
	SortPostingDateAsc
)

// ParseSort maps the API sort parameter; anything unknown sorts newest first.
func ParseSort(s string) Sort {
	if strings.EqualFold(strings.TrimSpace(s), "posting_date_asc") {
		return SortPostingDateAsc
	}
	return SortPostingDateDesc
}

func (s Sort) String() string {
	if s == SortPostingDateAsc {
		return "posting_date_asc"
	}
	return "posting_date_desc"
}
