package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeBrowser renders pages in a headless Chrome driven over CDP.
type ChromeBrowser struct {
	Headless      bool
	UserAgent     string
	ExecPath      string
	ActionTimeout time.Duration
}

func (b ChromeBrowser) Open(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if b.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.UserAgent))
	}
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// first Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	timeout := b.ActionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chromeSession{
		ctx:     browserCtx,
		timeout: timeout,
		release: func() {
			_ = chromedp.Cancel(browserCtx)
			browserCancel()
			allocCancel()
		},
	}, nil
}

type chromeSession struct {
	ctx     context.Context
	timeout time.Duration

	once    sync.Once
	release func()
}

// run executes actions on the browser tab, bounded by the per-action timeout
// and aborted early if the caller's ctx ends.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	actx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(actx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromeSession) ClickIfPresent(ctx context.Context, selector string) (bool, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return false, err
	}
	js := fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  return !!el && !el.disabled && el.offsetParent !== null;
})()`, sel)

	var clickable bool
	if err := s.run(ctx, chromedp.Evaluate(js, &clickable)); err != nil {
		return false, fmt.Errorf("look up %q: %w", selector, err)
	}
	if !clickable {
		return false, nil
	}
	if err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return false, fmt.Errorf("click %q: %w", selector, err)
	}
	return true, nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot dom: %w", err)
	}
	return html, nil
}

// Close tears the tab and the browser process down. Safe to call twice.
func (s *chromeSession) Close() error {
	s.once.Do(s.release)
	return nil
}
