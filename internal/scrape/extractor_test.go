package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jobboard/internal/domain"
)

type fakeBrowser struct {
	openErr error
	sess    *fakeSession
	opened  int
}

func (b *fakeBrowser) Open(context.Context) (Session, error) {
	b.opened++
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.sess, nil
}

type fakeSession struct {
	html        string
	navErr      error
	htmlErr     error
	clickErr    error
	moreClicks  int // times the load-more control stays present
	clicks      int
	closed      int
	closedFirst bool
}

func (s *fakeSession) Navigate(context.Context, string) error { return s.navErr }

func (s *fakeSession) ClickIfPresent(context.Context, string) (bool, error) {
	if s.clickErr != nil {
		return false, s.clickErr
	}
	if s.clicks >= s.moreClicks {
		return false, nil
	}
	s.clicks++
	return true, nil
}

func (s *fakeSession) HTML(context.Context) (string, error) { return s.html, s.htmlErr }

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

const boardHTML = `<html><body>
<div class="job-card">
  <a href="/jobs/1?utm_source=x#top"><h2 class="job-title"> Pricing Actuary </h2></a>
  <span class="company">Acme&nbsp;Re</span>
  <span class="location">London</span>
  <span class="posting-date">3 days ago</span>
  <span class="tag">Life, Pricing</span><span class="tag">life</span>
</div>
<div class="job-card">
  <h2 class="job-title">Reserving Analyst</h2>
  <span class="company">Beta Mutual</span>
  <span class="location">Remote</span>
  <span class="job-type">Contract</span>
</div>
<div class="job-card"><p>advert</p></div>
</body></html>`

func collect(t *testing.T, ex *Extractor) ([]domain.RawRecord, []error) {
	t.Helper()
	var recs []domain.RawRecord
	var errs []error
	for rec, err := range ex.Extract(context.Background(), "https://board.example/list") {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, errs
}

func TestExtract_Records(t *testing.T) {
	sess := &fakeSession{html: boardHTML}
	ex := New(&fakeBrowser{sess: sess}, Config{Selectors: DefaultSelectors()}, nil)

	recs, errs := collect(t, ex)

	want := []domain.RawRecord{
		{
			Title: "Pricing Actuary", Company: "Acme Re", Location: "London",
			PostedText: "3 days ago",
			TagsText:   []string{"Life", " Pricing", "life"},
			Link:       "https://board.example/jobs/1",
		},
		{
			Title: "Reserving Analyst", Company: "Beta Mutual", Location: "Remote",
			JobTypeText: "Contract",
		},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one extraction error", errs)
	}
	var xe *domain.ExtractionError
	if !errors.As(errs[0], &xe) || xe.Index != 2 {
		t.Errorf("err = %v, want ExtractionError at index 2", errs[0])
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestExtract_BadLinkKeepsRecord(t *testing.T) {
	html := `<div class="job-card"><h2 class="job-title">A</h2><span class="company">Acme</span><a href="%zz">x</a></div>
<div class="job-card"><h2 class="job-title">B</h2><a href="/jobs/2">x</a></div>`
	ex := New(&fakeBrowser{sess: &fakeSession{html: html}}, Config{}, nil)

	recs, errs := collect(t, ex)
	want := []domain.RawRecord{
		{Title: "A", Company: "Acme"},
		{Title: "B", Link: "https://board.example/jobs/2"},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if len(errs) != 0 {
		t.Errorf("errors = %v, want none", errs)
	}
}

func TestExtract_SessionClosedOnFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		sess *fakeSession
	}{
		{"navigate", &fakeSession{navErr: boom}},
		{"snapshot", &fakeSession{htmlErr: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := New(&fakeBrowser{sess: tt.sess}, Config{}, nil)
			recs, errs := collect(t, ex)
			if len(recs) != 0 {
				t.Errorf("got %d records, want 0", len(recs))
			}
			if len(errs) != 1 || !errors.Is(errs[0], boom) {
				t.Errorf("errors = %v, want one wrapping boom", errs)
			}
			if tt.sess.closed != 1 {
				t.Errorf("session closed %d times, want 1", tt.sess.closed)
			}
		})
	}
}

func TestExtract_OpenFailure(t *testing.T) {
	ex := New(&fakeBrowser{openErr: errors.New("no chrome")}, Config{}, nil)
	_, errs := collect(t, ex)
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	var xe *domain.ExtractionError
	if errors.As(errs[0], &xe) {
		t.Errorf("open failure should be terminal, got %v", errs[0])
	}
}

func TestExtract_LoadMoreBounded(t *testing.T) {
	tests := []struct {
		name       string
		present    int
		max        int
		wantClicks int
	}{
		{"exhausted before bound", 2, 5, 2},
		{"bound hit", 100, 3, 3},
		{"disabled", 4, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{html: boardHTML, moreClicks: tt.present}
			ex := New(&fakeBrowser{sess: sess}, Config{
				LoadMore: LoadMore{Selector: "button.load-more", MaxClicks: tt.max},
			}, nil)
			recs, _ := collect(t, ex)
			if sess.clicks != tt.wantClicks {
				t.Errorf("clicks = %d, want %d", sess.clicks, tt.wantClicks)
			}
			if len(recs) != 2 {
				t.Errorf("records = %d, want 2", len(recs))
			}
		})
	}
}

func TestExtract_ClickErrorKeepsLoadedPage(t *testing.T) {
	sess := &fakeSession{html: boardHTML, moreClicks: 5, clickErr: errors.New("detached node")}
	ex := New(&fakeBrowser{sess: sess}, Config{
		LoadMore: LoadMore{Selector: "button", MaxClicks: 5},
	}, nil)
	recs, errs := collect(t, ex)
	if len(recs) != 2 || len(errs) != 1 {
		t.Errorf("records = %d errors = %d, want 2 and 1", len(recs), len(errs))
	}
}

func TestExtract_StopsWhenConsumerBreaks(t *testing.T) {
	sess := &fakeSession{html: boardHTML}
	ex := New(&fakeBrowser{sess: sess}, Config{}, nil)
	n := 0
	for range ex.Extract(context.Background(), "https://board.example/") {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterations = %d, want 1", n)
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := New(&fakeBrowser{sess: &fakeSession{html: boardHTML}}, Config{Settle: 1}, nil)
	var errs []error
	for _, err := range ex.Extract(ctx, "https://board.example/") {
		errs = append(errs, err)
	}
	if len(errs) != 1 || !errors.Is(errs[0], context.Canceled) {
		t.Errorf("errors = %v, want context.Canceled", errs)
	}
}
