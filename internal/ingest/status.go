package ingest

import (
	"sync"
	"time"
)

// RunStatus is what GET /ingest/status reports.
type RunStatus struct {
	Running   bool      `json:"running"`
	LastRunAt time.Time `json:"last_run_at,omitzero"`
	LastOkAt  time.Time `json:"last_ok_at,omitzero"`
	LastError string    `json:"last_error,omitempty"`
	Last      *Summary  `json:"last,omitempty"`
}

// Status tracks the most recent run. The zero value is ready to use.
type Status struct {
	mu sync.Mutex
	st RunStatus
}

// Begin marks a run as started. It reports false if one is already running.
func (s *Status) Begin(at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Running {
		return false
	}
	s.st.Running = true
	s.st.LastRunAt = at
	return true
}

// abort undoes Begin for a run that never started.
func (s *Status) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Running = false
}

func (s *Status) End(sum Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Running = false
	s.st.Last = &sum
	if err != nil {
		s.st.LastError = err.Error()
		return
	}
	s.st.LastError = ""
	s.st.LastOkAt = sum.Finished
}

func (s *Status) Snapshot() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	if st.Last != nil {
		last := *st.Last
		st.Last = &last
	}
	return st
}
