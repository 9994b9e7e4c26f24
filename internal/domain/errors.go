package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrDuplicate = errors.New("job already exists")
)

// ValidationError reports the first required field that was missing or blank.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Field '%s' is required and cannot be empty.", e.Field)
}

// InvalidDateError reports a posting date that is not YYYY-MM-DD.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return "Invalid date format for 'posting_date'. Use YYYY-MM-DD."
}

// ExtractionError is a per-container scrape failure. It never aborts a run.
type ExtractionError struct {
	Index int
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract listing #%d: %v", e.Index, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
