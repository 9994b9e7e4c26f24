package httpapi

import (
	"context"
	"net/http"

	"jobboard/internal/ingest"
)

type IngestHandler struct {
	Trigger *ingest.Trigger
	// Base outlives the request so a triggered run is not cut short when the
	// response is written.
	Base context.Context
}

func (h IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.Trigger == nil {
		WriteError(w, http.StatusServiceUnavailable, msgIngestOff)
		return
	}
	WriteJSON(w, http.StatusOK, h.Trigger.Status.Snapshot())
}

func (h IngestHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Trigger == nil {
		WriteError(w, http.StatusServiceUnavailable, msgIngestOff)
		return
	}
	base := h.Base
	if base == nil {
		base = context.WithoutCancel(r.Context())
	}
	if !h.Trigger.Start(base) {
		WriteError(w, http.StatusConflict, msgIngestRunning)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
