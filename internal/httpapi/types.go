package httpapi

import "jobboard/internal/domain"

// jobJSON is the wire form of a listing.
type jobJSON struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	PostingDate string   `json:"posting_date"`
	JobType     string   `json:"job_type"`
	Tags        []string `json:"tags"`
}

func toJSON(j domain.JobListing) jobJSON {
	return jobJSON{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		PostingDate: j.PostingDate.Format(domain.DateLayout),
		JobType:     j.JobType,
		Tags:        j.Tags.Slice(),
	}
}

type createReq struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	PostingDate string   `json:"posting_date"`
	JobType     string   `json:"job_type"`
	Tags        []string `json:"tags"`
}

func (r createReq) fields() domain.JobFields {
	return domain.JobFields{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		PostingDate: r.PostingDate,
		JobType:     r.JobType,
		Tags:        r.Tags,
	}
}

// patchReq leaves absent keys nil so only provided fields change.
type patchReq struct {
	Title       *string   `json:"title"`
	Company     *string   `json:"company"`
	Location    *string   `json:"location"`
	PostingDate *string   `json:"posting_date"`
	JobType     *string   `json:"job_type"`
	Tags        *[]string `json:"tags"`
}

func (r patchReq) patch() domain.JobPatch {
	return domain.JobPatch{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		PostingDate: r.PostingDate,
		JobType:     r.JobType,
		Tags:        r.Tags,
	}
}
