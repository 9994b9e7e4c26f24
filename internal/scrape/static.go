package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxPageBytes bounds a static page download.
const maxPageBytes = 8 << 20

// StaticBrowser fetches pages over plain HTTP. It is enough for sources that
// render listings server-side; there is nothing to click.
type StaticBrowser struct {
	Client    *http.Client
	Limiter   *HostLimiter
	UserAgent string
}

func (b StaticBrowser) Open(ctx context.Context) (Session, error) {
	hc := b.Client
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	ua := b.UserAgent
	if ua == "" {
		ua = "jobboard/1.0 (+local)"
	}
	return &staticSession{hc: hc, limiter: b.Limiter, ua: ua}, nil
}

type staticSession struct {
	hc      *http.Client
	limiter *HostLimiter
	ua      string
	body    string
	loaded  bool
}

func (s *staticSession) Navigate(ctx context.Context, url string) error {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, url); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	res, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("page status %d", res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}
	s.body = string(b)
	s.loaded = true
	return nil
}

func (s *staticSession) ClickIfPresent(context.Context, string) (bool, error) {
	return false, nil
}

func (s *staticSession) HTML(context.Context) (string, error) {
	if !s.loaded {
		return "", errors.New("no page loaded")
	}
	return s.body, nil
}

func (s *staticSession) Close() error { return nil }
