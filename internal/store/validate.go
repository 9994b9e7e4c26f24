package store

import (
	"strings"
	"time"

	"jobboard/internal/domain"
	"jobboard/internal/normalize"
)

// Options carries the normalization policy applied to every write.
type Options struct {
	Keys     domain.KeyPolicy
	FoldTags bool
}

// NewListing validates f and builds the record to insert (ID unset) plus its
// natural key. Required fields are checked in a fixed order so the error
// always names the first offender.
func (o Options) NewListing(f domain.JobFields) (domain.JobListing, string, error) {
	required := []struct {
		name  string
		value string
	}{
		{"title", f.Title},
		{"company", f.Company},
		{"location", f.Location},
		{"posting_date", f.PostingDate},
		{"job_type", f.JobType},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.JobListing{}, "", &domain.ValidationError{Field: r.name}
		}
	}
	date, err := normalize.ParseDate(f.PostingDate)
	if err != nil {
		return domain.JobListing{}, "", err
	}

	j := domain.JobListing{
		Title:       strings.TrimSpace(f.Title),
		Company:     strings.TrimSpace(f.Company),
		Location:    strings.TrimSpace(f.Location),
		PostingDate: date,
		JobType:     strings.TrimSpace(f.JobType),
		Tags:        domain.NewTagSet(normalize.Tags(f.Tags, o.FoldTags)...),
	}
	return j, o.Keys.NaturalKey(j.Title, j.Company), nil
}

// ApplyPatch returns cur with the provided fields replaced. Provided text
// fields must be non-blank and a provided date must parse.
func (o Options) ApplyPatch(cur domain.JobListing, p domain.JobPatch) (domain.JobListing, string, error) {
	next := cur
	text := []struct {
		name string
		in   *string
		out  *string
	}{
		{"title", p.Title, &next.Title},
		{"company", p.Company, &next.Company},
		{"location", p.Location, &next.Location},
		{"job_type", p.JobType, &next.JobType},
	}
	for _, f := range text {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return cur, "", &domain.ValidationError{Field: f.name}
		}
		*f.out = v
	}
	if p.PostingDate != nil {
		d, err := normalize.ParseDate(*p.PostingDate)
		if err != nil {
			return cur, "", err
		}
		next.PostingDate = d
	}
	if p.Tags != nil {
		next.Tags = domain.NewTagSet(normalize.Tags(*p.Tags, o.FoldTags)...)
	}
	return next, o.Keys.NaturalKey(next.Title, next.Company), nil
}

func formatDate(t time.Time) string { return t.Format(domain.DateLayout) }

func parseStoredDate(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		// rows are only written through NewListing/ApplyPatch
		return time.Time{}
	}
	return t
}
