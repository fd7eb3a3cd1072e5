// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// EventsHandler handles per-event leaderboard requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleGetEventLeaderboard handles GET /events/{code}/leaderboard requests.
// The code is the short join code, not the event ID.
func (h *EventsHandler) HandleGetEventLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_event_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/events/")
	code, found := strings.CutSuffix(path, "/leaderboard")
	if !found || code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	board, err := h.deps.EventLeaderboard(r.Context(), code)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}
