package httpapi

import (
	"net/http"

	"jobboard/internal/store"
)

type HealthHandler struct {
	Store store.Store
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.Count(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "store unavailable"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "jobs": n})
}
