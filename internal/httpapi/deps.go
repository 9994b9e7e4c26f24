// Package httpapi serves the job listing CRUD and query API.
package httpapi

import (
	"log/slog"

	"jobboard/internal/config"
	"jobboard/internal/ingest"
	"jobboard/internal/metrics"
	"jobboard/internal/query"
	"jobboard/internal/store"
)

type Deps struct {
	Store store.Store
	Query query.Service

	// Ingest is optional; without it the /ingest routes answer 503.
	Ingest *ingest.Trigger

	// Config is the effective configuration shown at /config.
	Config config.Config

	Metrics *metrics.Metrics // optional
	Log     *slog.Logger
}
