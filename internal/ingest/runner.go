// Package ingest runs one pass of extract, normalize, dedup and store over a
// job board page.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/domain"
	"jobboard/internal/logging"
	"jobboard/internal/metrics"
	"jobboard/internal/normalize"
	"jobboard/internal/store"
)

// Source yields raw records for a page. *scrape.Extractor satisfies it.
type Source interface {
	Extract(ctx context.Context, url string) iter.Seq2[domain.RawRecord, error]
}

type Options struct {
	DefaultJobType string
	// DefaultTags apply when a record carries no tags of its own.
	DefaultTags []string
	FoldTags    bool
}

type Runner struct {
	Store   store.Store
	Source  Source
	Opts    Options
	Log     *slog.Logger
	Metrics *metrics.Metrics
	// Now is the clock used for relative posting dates. Defaults to time.Now.
	Now func() time.Time
}

// Summary counts what a run did. Discovered = Created + Skipped + Failed.
type Summary struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Discovered int       `json:"discovered"`
	Created    int       `json:"created"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
}

type outcome int

const (
	created outcome = iota
	skipped
	failed
)

// Run ingests every record at url. Per-record problems are counted and
// logged; only a failure to read the page at all is returned, alongside the
// partial summary.
func (r *Runner) Run(ctx context.Context, url string) (Summary, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	log := r.Log
	if log == nil {
		log = logging.Discard()
	}

	sum := Summary{RunID: uuid.NewString(), Source: url, Started: now()}
	log = log.With("run_id", sum.RunID)
	log.Info("ingest started", "url", url)

	var runErr error
	for raw, err := range r.Source.Extract(ctx, url) {
		if err != nil {
			var xe *domain.ExtractionError
			if !errors.As(err, &xe) {
				runErr = err
				break
			}
			sum.Discovered++
			sum.Failed++
			r.Metrics.Record(metrics.OutcomeFailed)
			log.Warn("listing not extracted", "index", xe.Index, "err", xe.Err)
			continue
		}

		sum.Discovered++
		switch r.ingestOne(ctx, log, raw, now()) {
		case created:
			sum.Created++
			r.Metrics.Record(metrics.OutcomeCreated)
		case skipped:
			sum.Skipped++
			r.Metrics.Record(metrics.OutcomeSkipped)
		default:
			sum.Failed++
			r.Metrics.Record(metrics.OutcomeFailed)
		}
	}

	sum.Finished = now()
	r.Metrics.Run(sum.Finished.Sub(sum.Started), runErr)

	attrs := []any{
		"discovered", sum.Discovered, "created", sum.Created,
		"skipped", sum.Skipped, "failed", sum.Failed,
		"took", sum.Finished.Sub(sum.Started).Round(time.Millisecond),
	}
	if runErr != nil {
		log.Error("ingest aborted", append(attrs, "err", runErr)...)
		return sum, fmt.Errorf("ingest %s: %w", url, runErr)
	}
	log.Info("ingest finished", attrs...)
	return sum, nil
}

func (r *Runner) ingestOne(ctx context.Context, log *slog.Logger, raw domain.RawRecord, now time.Time) (res outcome) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("listing panicked", "title", raw.Title, "panic", p)
			res = failed
		}
	}()

	f, err := r.Normalize(raw, now)
	if err != nil {
		log.Warn("listing rejected", "title", raw.Title, "company", raw.Company, "err", err)
		return failed
	}

	if _, found, err := r.Store.FindByNaturalKey(ctx, f.Title, f.Company); err != nil {
		log.Warn("dedup lookup failed", "title", f.Title, "err", err)
		return failed
	} else if found {
		log.Debug("duplicate skipped", "title", f.Title, "company", f.Company)
		return skipped
	}

	job, err := r.Store.Create(ctx, f)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		log.Debug("duplicate skipped on insert", "title", f.Title, "company", f.Company)
		return skipped
	case err != nil:
		log.Warn("listing not stored", "title", f.Title, "err", err)
		return failed
	}
	log.Debug("listing created", "id", job.ID, "title", job.Title)
	return created
}

// Normalize canonicalizes a raw record. A record without title, company or
// location is rejected with a *domain.ValidationError.
func (r *Runner) Normalize(raw domain.RawRecord, now time.Time) (domain.JobFields, error) {
	var f domain.JobFields
	var ok bool
	if f.Title, ok = normalize.Text(raw.Title); !ok {
		return f, &domain.ValidationError{Field: "title"}
	}
	if f.Company, ok = normalize.Text(raw.Company); !ok {
		return f, &domain.ValidationError{Field: "company"}
	}
	if f.Location, ok = normalize.Text(raw.Location); !ok {
		return f, &domain.ValidationError{Field: "location"}
	}
	f.PostingDate = normalize.Date(raw.PostedText, now).Format(domain.DateLayout)
	f.JobType = normalize.JobType(raw.JobTypeText, r.Opts.DefaultJobType)

	f.Tags = normalize.Tags(raw.TagsText, r.Opts.FoldTags)
	if len(f.Tags) == 0 {
		f.Tags = normalize.Tags(r.Opts.DefaultTags, r.Opts.FoldTags)
	}
	return f, nil
}
