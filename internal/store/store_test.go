package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jobboard/internal/domain"
)

func openTest(t *testing.T, opts Options) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fields(title, company, date string, tags ...string) domain.JobFields {
	return domain.JobFields{
		Title:       title,
		Company:     company,
		Location:    "London",
		PostingDate: date,
		JobType:     "Full-time",
		Tags:        tags,
	}
}

func ids(jobs []domain.JobListing) []int64 {
	out := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestCreate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{FoldTags: true})

	in := domain.JobFields{
		Title:       "Pricing Actuary",
		Company:     "Acme Re",
		Location:    "Zurich",
		PostingDate: "2024-01-07",
		JobType:     "Contract",
		Tags:        []string{"Life", "", "life ", "Pricing"},
	}
	created, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("Create did not assign an id")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != in.Title || got.Company != in.Company || got.Location != in.Location ||
		got.JobType != in.JobType || got.PostingDate.Format(domain.DateLayout) != in.PostingDate {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if diff := cmp.Diff([]string{"Life", "Pricing"}, got.Tags.Slice()); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	tests := []struct {
		name  string
		in    domain.JobFields
		field string
	}{
		{"no title", domain.JobFields{Company: "A", Location: "L", PostingDate: "2024-01-01", JobType: "X"}, "title"},
		{"blank company", domain.JobFields{Title: "T", Company: "  ", Location: "L", PostingDate: "2024-01-01", JobType: "X"}, "company"},
		{"no location", domain.JobFields{Title: "T", Company: "A", PostingDate: "2024-01-01", JobType: "X"}, "location"},
		{"no date", domain.JobFields{Title: "T", Company: "A", Location: "L", JobType: "X"}, "posting_date"},
		{"no job type", domain.JobFields{Title: "T", Company: "A", Location: "L", PostingDate: "2024-01-01"}, "job_type"},
		{"first wins", domain.JobFields{}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %v, want ValidationError{%s}", err, tt.field)
			}
		})
	}

	_, err := s.Create(ctx, fields("T", "A", "13-40-9999"))
	var de *domain.InvalidDateError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want InvalidDateError", err)
	}

	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("failed creates left %d rows", n)
	}
}

func TestCreate_DuplicateNaturalKey(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	if _, err := s.Create(ctx, fields("Actuary", "Acme", "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	_, err := s.Create(ctx, fields("  Actuary ", "Acme", "2024-02-01", "x"))
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	// case-sensitive by default
	if _, err := s.Create(ctx, fields("actuary", "Acme", "2024-01-01")); err != nil {
		t.Fatalf("different case should be a different key: %v", err)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestCreate_FoldedKey(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{Keys: domain.KeyPolicy{FoldCase: true}})

	if _, err := s.Create(ctx, fields("Actuary", "Acme", "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, fields("ACTUARY", "acme", "2024-01-01")); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	if _, ok, err := s.FindByNaturalKey(ctx, "actuary", "ACME"); err != nil || !ok {
		t.Fatalf("FindByNaturalKey folded = %v, %v", ok, err)
	}
}

func TestCreate_ConcurrentSameKey(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, fields("Actuary", "Acme", "2024-01-01"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrDuplicate):
				dupes++
			default:
				t.Errorf("Create: %v", err)
			}
		}()
	}
	wg.Wait()
	if created != 1 || dupes != n-1 {
		t.Errorf("created=%d dupes=%d, want 1 and %d", created, dupes, n-1)
	}
}

func TestFindByNaturalKey(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	want, err := s.Create(ctx, fields("Senior Actuary", "Acme", "2024-01-01", "Life"))
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.FindByNaturalKey(ctx, " Senior  Actuary", "Acme ")
	if err != nil || !ok {
		t.Fatalf("FindByNaturalKey = %v, %v", ok, err)
	}
	if got.ID != want.ID || !cmp.Equal(got.Tags.Slice(), []string{"Life"}) {
		t.Errorf("got %+v, want id %d with tag Life", got, want.ID)
	}
	if _, ok, err := s.FindByNaturalKey(ctx, "Senior Actuary", "Other"); err != nil || ok {
		t.Errorf("unexpected match: %v, %v", ok, err)
	}
}

func TestGetDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	if _, err := s.Get(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if err := s.Delete(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete err = %v", err)
	}

	j, err := s.Create(ctx, fields("A", "B", "2024-01-01", "t1"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, j.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, j.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	// the key is free again
	if _, err := s.Create(ctx, fields("A", "B", "2024-01-01")); err != nil {
		t.Errorf("re-create after delete: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{FoldTags: true})

	j, err := s.Create(ctx, fields("Actuary", "Acme", "2024-01-01", "Life"))
	if err != nil {
		t.Fatal(err)
	}

	loc := "Paris"
	tags := []string{"Pricing", "pricing", " "}
	got, err := s.Update(ctx, j.ID, domain.JobPatch{Location: &loc, Tags: &tags})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Location != "Paris" || got.Title != "Actuary" || got.JobType != "Full-time" {
		t.Errorf("partial update touched other fields: %+v", got)
	}
	reread, _ := s.Get(ctx, j.ID)
	if diff := cmp.Diff([]string{"Pricing"}, reread.Tags.Slice()); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	bad := "2024-02-30"
	_, err = s.Update(ctx, j.ID, domain.JobPatch{PostingDate: &bad})
	var de *domain.InvalidDateError
	if !errors.As(err, &de) {
		t.Errorf("bad date err = %v", err)
	}

	same, err := s.Update(ctx, j.ID, domain.JobPatch{})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if same.ID != j.ID || same.Location != "Paris" || !cmp.Equal(same.Tags.Slice(), []string{"Pricing"}) {
		t.Errorf("empty patch changed the listing: %+v", same)
	}

	empty := " "
	_, err = s.Update(ctx, j.ID, domain.JobPatch{Title: &empty})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Errorf("empty title err = %v", err)
	}

	if _, err := s.Update(ctx, 999, domain.JobPatch{Location: &loc}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing id err = %v", err)
	}

	after, _ := s.Get(ctx, j.ID)
	if after.PostingDate.Format(domain.DateLayout) != "2024-01-01" || after.Title != "Actuary" {
		t.Errorf("failed updates changed state: %+v", after)
	}
}

func TestUpdate_KeyCollision(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	a, _ := s.Create(ctx, fields("A", "Acme", "2024-01-01"))
	if _, err := s.Create(ctx, fields("B", "Acme", "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	title := "B"
	if _, err := s.Update(ctx, a.ID, domain.JobPatch{Title: &title}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	// rewriting its own key is fine
	same := "A"
	if _, err := s.Update(ctx, a.ID, domain.JobPatch{Title: &same}); err != nil {
		t.Fatalf("self update: %v", err)
	}
}

func TestList_FilterAndSort(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	mk := func(title, date, jobType, loc string, tags ...string) int64 {
		t.Helper()
		j, err := s.Create(ctx, domain.JobFields{
			Title: title, Company: "Acme", Location: loc,
			PostingDate: date, JobType: jobType, Tags: tags,
		})
		if err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
		return j.ID
	}
	a := mk("a", "2024-01-05", "Full-time", "London", "Life", "Pricing")
	b := mk("b", "2024-01-07", "Contract", "London", "Health")
	c := mk("c", "2024-01-05", "Full-time", "Paris", "Reserving", "Épargne")
	d := mk("d", "2024-01-09", "Full-time", "London")

	tests := []struct {
		name   string
		filter Filter
		sort   Sort
		want   []int64
	}{
		{"all desc", Filter{}, SortPostingDateDesc, []int64{d, b, a, c}},
		{"all asc", Filter{}, SortPostingDateAsc, []int64{a, c, b, d}},
		{"full-time desc, ties by insertion", Filter{JobType: "Full-time"}, SortPostingDateDesc, []int64{d, a, c}},
		{"location", Filter{Location: "London"}, SortPostingDateAsc, []int64{a, b, d}},
		{"tag substring", Filter{Tag: "pric"}, SortPostingDateDesc, []int64{a}},
		{"tag folds non-ascii case", Filter{Tag: "éPARGNE"}, SortPostingDateDesc, []int64{c}},
		{"tag and type", Filter{Tag: "e", JobType: "Full-time"}, SortPostingDateAsc, []int64{a, c}},
		{"no match", Filter{JobType: "Internship"}, SortPostingDateDesc, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter, tt.sort)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("ids (-want +got):\n%s", diff)
			}
		})
	}

	got, _ := s.List(ctx, Filter{Tag: "pric"}, SortPostingDateDesc)
	if diff := cmp.Diff([]string{"Life", "Pricing"}, got[0].Tags.Slice()); diff != "" {
		t.Errorf("listed tags (-want +got):\n%s", diff)
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "jobs.db")

	s, err := Open(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, fields("A", "B", "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count after reopen = %d", n)
	}
}

func TestParseSort(t *testing.T) {
	for in, want := range map[string]Sort{
		"":                  SortPostingDateDesc,
		"posting_date_desc": SortPostingDateDesc,
		"posting_date_asc":  SortPostingDateAsc,
		"bogus":             SortPostingDateDesc,
	} {
		if got := ParseSort(in); got != want {
			t.Errorf("ParseSort(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMigrate_BackfillsTagFold(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")

	s, err := Open(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	j, err := s.Create(ctx, fields("A", "B", "2024-01-01", "Épargne"))
	if err != nil {
		t.Fatal(err)
	}
	// roll the file back to the v1 layout
	for _, q := range []string{
		`ALTER TABLE job_tags DROP COLUMN tag_fold;`,
		`PRAGMA user_version = 1;`,
	} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	_ = s.Close()

	s, err = Open(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.List(ctx, Filter{Tag: "ÉPAR"}, SortPostingDateDesc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{j.ID}, ids(got)); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
}
