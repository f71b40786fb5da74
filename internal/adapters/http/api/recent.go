package api

import (
	"errors"
	"net/http"
	"strconv"
)

// RecentHandler handles recent-case queries.
type RecentHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewRecentHandler creates a new recent handler.
func NewRecentHandler(deps Dependencies, maxLimit int) *RecentHandler {
	return &RecentHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRecent handles GET /recent?limit=N requests.
func (h *RecentHandler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recent"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrap(op, errors.New("limit must be a positive integer")))
			return
		}
		if parsed > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", wrap(op, errors.New("limit exceeds maximum")))
			return
		}
		n = parsed
	}

	entries, err := h.deps.Recent(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
