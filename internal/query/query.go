// Package query turns listing query parameters into a store lookup.
package query

import (
	"context"
	"net/url"
	"strings"

	"jobboard/internal/domain"
	"jobboard/internal/store"
)

// Lister is the read side of store.Store.
type Lister interface {
	List(ctx context.Context, f store.Filter, s store.Sort) ([]domain.JobListing, error)
}

type Service struct {
	Store Lister
}

// Params is a parsed listing query.
type Params struct {
	Filter store.Filter
	Sort   store.Sort
}

// ParseParams reads job_type, location, tag and sort. Blank values do not
// filter; an unknown sort falls back to newest first.
func ParseParams(q url.Values) Params {
	return Params{
		Filter: store.Filter{
			JobType:  strings.TrimSpace(q.Get("job_type")),
			Location: strings.TrimSpace(q.Get("location")),
			Tag:      strings.TrimSpace(q.Get("tag")),
		},
		Sort: store.ParseSort(q.Get("sort")),
	}
}

func (s Service) List(ctx context.Context, q url.Values) ([]domain.JobListing, error) {
	p := ParseParams(q)
	return s.Store.List(ctx, p.Filter, p.Sort)
}
