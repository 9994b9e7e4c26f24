package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobboard/internal/domain"
)

// maxAgeDays caps relative phrases; anything older is treated as noise.
const maxAgeDays = 36500

var (
	reDaysAgo  = regexp.MustCompile(`(?i)\b(\d+)\+?\s*(?:days?|d)\s+ago\b`)
	reWeeksAgo = regexp.MustCompile(`(?i)\b(\d+)\+?\s*(?:weeks?|w)\s+ago\b`)
	reSameDay  = regexp.MustCompile(`(?i)\b(?:today|just now|\d+\s*(?:hours?|hrs?|h|minutes?|mins?|m|seconds?|secs?|s)\s+ago)\b`)
	reYestday  = regexp.MustCompile(`(?i)\byesterday\b`)
	rePosted   = regexp.MustCompile(`(?i)^posted(?:\s+on)?\b:?`)
)

// Layouts recognized as absolute posting dates, tried in order.
var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"01/02/2006",
	time.RFC3339,
}

// Date resolves a posted-date text against now. Relative phrases ("3 days ago",
// "2 weeks ago", "yesterday", "today") are counted back from now; absolute dates
// in a known layout are parsed; anything else yields now. The result is always
// a calendar date at midnight UTC.
func Date(text string, now time.Time) time.Time {
	today := domain.DateOf(now)
	text = CleanText(text)
	if text == "" {
		return today
	}

	if m := reDaysAgo.FindStringSubmatch(text); m != nil {
		if n, ok := ageDays(m[1], 1); ok {
			return today.AddDate(0, 0, -n)
		}
		return today
	}
	if m := reWeeksAgo.FindStringSubmatch(text); m != nil {
		if n, ok := ageDays(m[1], 7); ok {
			return today.AddDate(0, 0, -n)
		}
		return today
	}
	if reYestday.MatchString(text) {
		return today.AddDate(0, 0, -1)
	}
	if reSameDay.MatchString(text) {
		return today
	}

	candidate := strings.TrimSpace(rePosted.ReplaceAllString(text, ""))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return domain.DateOf(t)
		}
	}
	return today
}

func ageDays(digits string, unit int) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n > maxAgeDays/unit {
		return 0, false
	}
	return n * unit, true
}

// ParseDate is the strict YYYY-MM-DD parser used for caller-supplied dates.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &domain.InvalidDateError{Value: s}
	}
	return t, nil
}
