package domain

import "time"

// DateLayout is the wire and storage format of a posting date.
const DateLayout = "2006-01-02"

// JobListing is the canonical, stored form of a job posting.
type JobListing struct {
	ID          int64
	Title       string
	Company     string
	Location    string
	PostingDate time.Time // midnight UTC
	JobType     string
	Tags        TagSet
}

// RawRecord is one listing container as pulled off the page, before normalization.
type RawRecord struct {
	Title       string
	Company     string
	Location    string
	PostedText  string
	JobTypeText string
	TagsText    []string
	Link        string
}

// JobFields is the input of a create. PostingDate is YYYY-MM-DD.
type JobFields struct {
	Title       string
	Company     string
	Location    string
	PostingDate string
	JobType     string
	Tags        []string
}

// JobPatch carries the fields of a partial update; nil means "leave as is".
type JobPatch struct {
	Title       *string
	Company     *string
	Location    *string
	PostingDate *string
	JobType     *string
	Tags        *[]string
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Company == nil && p.Location == nil &&
		p.PostingDate == nil && p.JobType == nil && p.Tags == nil
}

// DateOf truncates t to its calendar date, expressed at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
