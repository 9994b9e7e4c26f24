package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobboard/internal/domain"
)

// Error bodies are always {"error": message}.
const (
	msgNotFound      = "Not found"
	msgJobNotFound   = "Job not found"
	msgJobExists     = "Job already exists"
	msgInternal      = "Internal server error"
	msgInvalidJSON   = "Invalid JSON body"
	msgNotAllowed    = "Method not allowed"
	msgIngestOff     = "Ingestion is not configured"
	msgIngestRunning = "Ingestion already running"
)

type APIError struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, APIError{Error: message})
}

// writeStoreError maps domain errors to responses. Anything unrecognized is
// logged and answered with a generic 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var ve *domain.ValidationError
	var de *domain.InvalidDateError
	switch {
	case errors.As(err, &ve), errors.As(err, &de):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, msgJobNotFound)
	case errors.Is(err, domain.ErrDuplicate):
		WriteError(w, http.StatusConflict, msgJobExists)
	default:
		log.Error("request failed",
			"request_id", RequestIDFrom(r.Context()),
			"method", r.Method, "path", r.URL.Path, "err", err)
		WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}
