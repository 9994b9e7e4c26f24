// Package scrape pulls raw listing records off a rendered job board page.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"jobboard/internal/domain"
	"jobboard/internal/logging"
	"jobboard/internal/normalize"
)

// Selectors are CSS selectors. Field selectors are evaluated inside each
// container.
type Selectors struct {
	Container string
	Title     string
	Company   string
	Location  string
	Posted    string
	JobType   string
	Tags      string
	Link      string
}

// DefaultSelectors match the actuarial board the service was first built for.
func DefaultSelectors() Selectors {
	return Selectors{
		Container: ".job-card",
		Title:     ".job-title",
		Company:   ".company",
		Location:  ".location",
		Posted:    ".posting-date",
		JobType:   ".job-type",
		Tags:      ".tag",
		Link:      "a",
	}
}

// LoadMore drives the "show more results" control. An empty Selector turns
// the loop off.
type LoadMore struct {
	Selector  string
	MaxClicks int
	Pause     time.Duration
}

type Config struct {
	Selectors Selectors
	LoadMore  LoadMore
	// Settle is how long to wait after navigation before reading the page.
	Settle time.Duration
}

type Extractor struct {
	browser Browser
	cfg     Config
	log     *slog.Logger
}

func New(b Browser, cfg Config, log *slog.Logger) *Extractor {
	if log == nil {
		log = logging.Discard()
	}
	if cfg.Selectors.Container == "" {
		cfg.Selectors = DefaultSelectors()
	}
	return &Extractor{browser: b, cfg: cfg, log: log}
}

// Extract yields one record per listing container found at pageURL. A
// malformed container yields a *domain.ExtractionError and iteration goes
// on; any other error is terminal and is the last element.
//
// The browser session is closed before the first element is yielded.
func (e *Extractor) Extract(ctx context.Context, pageURL string) iter.Seq2[domain.RawRecord, error] {
	return func(yield func(domain.RawRecord, error) bool) {
		doc, err := e.snapshot(ctx, pageURL)
		if err != nil {
			yield(domain.RawRecord{}, err)
			return
		}

		cards := doc.Find(e.cfg.Selectors.Container)
		e.log.Debug("containers found", "url", pageURL, "count", cards.Length())

		for i := range cards.Length() {
			if err := ctx.Err(); err != nil {
				yield(domain.RawRecord{}, err)
				return
			}
			rec, err := e.extractOne(pageURL, i, cards.Eq(i))
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (e *Extractor) snapshot(ctx context.Context, pageURL string) (*goquery.Document, error) {
	sess, err := e.browser.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			e.log.Warn("close browser session", "err", cerr)
		}
	}()

	if err := sess.Navigate(ctx, pageURL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	if err := sleep(ctx, e.cfg.Settle); err != nil {
		return nil, err
	}
	if err := e.loadMore(ctx, sess); err != nil {
		return nil, err
	}

	html, err := sess.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return doc, nil
}

// loadMore clicks the load-more control until it disappears or MaxClicks is
// reached. A failed click ends expansion; whatever is loaded is still read.
// Only cancellation is returned as an error.
func (e *Extractor) loadMore(ctx context.Context, sess Session) error {
	lm := e.cfg.LoadMore
	if lm.Selector == "" || lm.MaxClicks <= 0 {
		return nil
	}
	every := rate.Inf
	if lm.Pause > 0 {
		every = rate.Every(lm.Pause)
	}
	pace := rate.NewLimiter(every, 1)

	for clicks := 0; ; clicks++ {
		if clicks >= lm.MaxClicks {
			e.log.Warn("load-more bound reached, listing may be truncated",
				"selector", lm.Selector, "clicks", clicks)
			return nil
		}
		if err := pace.Wait(ctx); err != nil {
			return err
		}
		ok, err := sess.ClickIfPresent(ctx, lm.Selector)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Warn("load-more click failed", "clicks", clicks, "err", err)
			return nil
		}
		if !ok {
			e.log.Debug("load-more exhausted", "clicks", clicks)
			return nil
		}
	}
}

func (e *Extractor) extractOne(pageURL string, i int, card *goquery.Selection) (rec domain.RawRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = domain.RawRecord{}
			err = &domain.ExtractionError{Index: i, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	sel := e.cfg.Selectors
	rec = domain.RawRecord{
		Title:       fieldText(card, sel.Title),
		Company:     fieldText(card, sel.Company),
		Location:    fieldText(card, sel.Location),
		PostedText:  fieldText(card, sel.Posted),
		JobTypeText: fieldText(card, sel.JobType),
		TagsText:    tagTexts(card, sel.Tags),
	}
	if rec.Title == "" && rec.Company == "" && rec.Location == "" {
		return domain.RawRecord{}, &domain.ExtractionError{Index: i, Err: errors.New("container has no listing fields")}
	}

	if href := linkHref(card, sel.Link); href != "" {
		link, lerr := normalize.Link(pageURL, href)
		if lerr != nil {
			e.log.Warn("unusable listing link", "index", i, "href", href, "err", lerr)
		} else {
			rec.Link = link
		}
	}
	return rec, nil
}

func fieldText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return normalize.CleanText(card.Find(selector).First().Text())
}

// tagTexts collects one entry per matching element, splitting delimited
// strings so "Life, Pricing" and two chips both become two tags.
func tagTexts(card *goquery.Selection, selector string) []string {
	if selector == "" {
		return nil
	}
	var out []string
	card.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, normalize.SplitTags(s.Text())...)
	})
	return out
}

func linkHref(card *goquery.Selection, selector string) string {
	if selector == "" {
		selector = "a"
	}
	if card.Is(selector) {
		if href, ok := card.Attr("href"); ok {
			return strings.TrimSpace(href)
		}
	}
	href, _ := card.Find(selector).First().Attr("href")
	return strings.TrimSpace(href)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
