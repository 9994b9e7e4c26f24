package httpapi

import (
	"log/slog"
	"net/http"

	"jobboard/internal/query"
	"jobboard/internal/store"
)

type JobsHandler struct {
	Store store.Store
	Query query.Service
	Log   *slog.Logger
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Query.List(r.Context(), r.URL.Query())
	if err != nil {
		writeStoreError(w, r, h.Log, err)
		return
	}
	out := make([]jobJSON, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJSON(j))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	job, err := h.Store.Create(r.Context(), req.fields())
	if err != nil {
		writeStoreError(w, r, h.Log, err)
		return
	}
	h.Log.Info("job created", "request_id", RequestIDFrom(r.Context()), "id", job.ID)
	WriteJSON(w, http.StatusCreated, toJSON(job))
}

func (h JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r.URL.Path)
	job, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, toJSON(job))
}

// Update serves both PUT and PATCH: only the keys present in the body change.
func (h JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r.URL.Path)
	var req patchReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	job, err := h.Store.Update(r.Context(), id, req.patch())
	if err != nil {
		writeStoreError(w, r, h.Log, err)
		return
	}
	h.Log.Info("job updated", "request_id", RequestIDFrom(r.Context()), "id", id)
	WriteJSON(w, http.StatusOK, toJSON(job))
}

func (h JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r.URL.Path)
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, h.Log, err)
		return
	}
	h.Log.Info("job deleted", "request_id", RequestIDFrom(r.Context()), "id", id)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}
