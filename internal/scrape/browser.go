package scrape

import "context"

// Browser hands out a page session for one ingestion run.
type Browser interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a single-use rendered page. Close must be called on every path.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// ClickIfPresent clicks the first element matching selector. It reports
	// false without error when nothing clickable matches.
	ClickIfPresent(ctx context.Context, selector string) (bool, error)
	HTML(ctx context.Context) (string, error)
	Close() error
}
