package httpapi

import (
	"context"
	"net/http"

	"jobboard/internal/logging"
)

// NewHandler wires every route behind the standard middleware chain. base
// bounds background ingestion started over HTTP.
func NewHandler(base context.Context, d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	mux := NewMux(base, d)
	return Chain(mux, RequestID, Recover(d.Log), AccessLog(d.Log), Cors)
}

// NewMux returns the bare mux, without middleware.
func NewMux(base context.Context, d Deps) *http.ServeMux {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.Query.Store == nil {
		d.Query.Store = d.Store
	}
	mux := http.NewServeMux()
	handle := func(route string, h http.Handler) {
		mux.Handle(route, instrument(d.Metrics, route, h))
	}

	// Jobs
	jh := JobsHandler{Store: d.Store, Query: d.Query, Log: d.Log}
	handle("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.List,
		http.MethodPost: jh.Create,
	}))
	byID := methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    jh.Get,
		http.MethodPut:    jh.Update,
		http.MethodPatch:  jh.Update,
		http.MethodDelete: jh.Delete,
	})
	handle("/jobs/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := pathID(r.URL.Path); !ok {
			notFound(w, r)
			return
		}
		byID(w, r)
	}))

	// Health + metrics
	hh := HealthHandler{Store: d.Store}
	handle("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	// Ingestion
	ih := IngestHandler{Trigger: d.Ingest, Base: base}
	handle("/ingest/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.Status,
	}))
	handle("/ingest/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.Run,
	}))

	// Config
	ch := ConfigHandler{Config: d.Config}
	handle("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	handle("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	mux.HandleFunc("/", notFound)
	return mux
}

func notFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, msgNotFound)
}
