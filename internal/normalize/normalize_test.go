package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"jobboard/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDate(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		in   string
		want string
	}{
		{"3 days ago", "2024-01-07"},
		{"Posted 3 days ago", "2024-01-07"},
		{"3 DAYS AGO", "2024-01-07"},
		{"1 day ago", "2024-01-09"},
		{"0 days ago", "2024-01-10"},
		{"30+ days ago", "2023-12-11"},
		{"2 weeks ago", "2023-12-27"},
		{"yesterday", "2024-01-09"},
		{"Today", "2024-01-10"},
		{"5 hours ago", "2024-01-10"},
		{"2023-11-05", "2023-11-05"},
		{"Nov 5, 2023", "2023-11-05"},
		{"November 5, 2023", "2023-11-05"},
		{"5 Nov 2023", "2023-11-05"},
		{"Posted on Nov 5, 2023", "2023-11-05"},
		{"posted on Jan 2, 2024", "2024-01-02"},
		{"POSTED 2023-11-05", "2023-11-05"},
		{"", "2024-01-10"},
		{"   ", "2024-01-10"},
		{"not a date", "2024-01-10"},
		{"13-40-9999", "2024-01-10"},
		{"99999999999999999999 days ago", "2024-01-10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Date(tt.in, now)
			if !got.Equal(day(tt.want)) {
				t.Errorf("Date(%q) = %s, want %s", tt.in, got.Format(domain.DateLayout), tt.want)
			}
			if got.Hour() != 0 || got.Location() != time.UTC {
				t.Errorf("Date(%q) = %v, want midnight UTC", tt.in, got)
			}
		})
	}
}

func TestDate_UsesCallerCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	now := time.Date(2024, 1, 10, 23, 30, 0, 0, loc)
	got := Date("", now)
	if !got.Equal(day("2024-01-10")) {
		t.Fatalf("got %s, want 2024-01-10", got.Format(domain.DateLayout))
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-02-29"); err != nil {
		t.Fatalf("ParseDate valid: %v", err)
	}
	for _, in := range []string{"13-40-9999", "2024-13-01", "", "2024/01/01"} {
		_, err := ParseDate(in)
		var de *domain.InvalidDateError
		if !errors.As(err, &de) {
			t.Errorf("ParseDate(%q) err = %v, want InvalidDateError", in, err)
		}
	}
}

func TestTags(t *testing.T) {
	got := Tags([]string{"Life", "", "life ", "Pricing"}, true)
	if diff := cmp.Diff([]string{"Life", "Pricing"}, got); diff != "" {
		t.Errorf("Tags fold (-want +got):\n%s", diff)
	}

	got = Tags([]string{"Life", "", "life ", "Pricing", "Life"}, false)
	if diff := cmp.Diff([]string{"Life", "life", "Pricing"}, got); diff != "" {
		t.Errorf("Tags exact (-want +got):\n%s", diff)
	}

	if got := Tags(nil, true); got == nil || len(got) != 0 {
		t.Errorf("Tags(nil) = %#v, want empty non-nil", got)
	}
}

func TestSplitTags(t *testing.T) {
	got := Tags(SplitTags("Life; Pricing | Health,  · Pensions"), true)
	want := []string{"Life", "Pricing", "Health", "Pensions"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SplitTags (-want +got):\n%s", diff)
	}
}

func TestJobType(t *testing.T) {
	tests := []struct{ in, def, want string }{
		{"", "Full-time", "Full-time"},
		{"  ", "", DefaultJobType},
		{" Contract ", "Full-time", "Contract"},
		{"Internship", "Full-time", "Internship"},
	}
	for _, tt := range tests {
		if got := JobType(tt.in, tt.def); got != tt.want {
			t.Errorf("JobType(%q, %q) = %q, want %q", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	if got, ok := Text("  Senior  Actuary \n"); !ok || got != "Senior Actuary" {
		t.Errorf("Text = %q, %v", got, ok)
	}
	if _, ok := Text(" \t "); ok {
		t.Error("blank text reported as present")
	}
}

func TestLink(t *testing.T) {
	got, err := Link("https://www.ActuaryList.com/jobs?page=2", "/jobs/123?utm_source=x&b=2&a=1#apply")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if want := "https://www.actuarylist.com/jobs/123?a=1&b=2"; got != want {
		t.Errorf("Link = %q, want %q", got, want)
	}
	if got, _ := Link("https://x.test", ""); got != "" {
		t.Errorf("empty href = %q", got)
	}
}
