// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// AdminHandler handles reference-data writes: user profiles, events, teams.
type AdminHandler struct {
	deps Dependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps Dependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

// userRequest is the payload for POST /users.
type userRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Sex         string  `json:"sex"`
	DateOfBirth string  `json:"date_of_birth"` // RFC 3339 date, e.g. "1990-06-15"
	Bodyweight  float64 `json:"bodyweight"`
}

// HandlePutUser handles POST /users requests, upserting a profile.
func (h *AdminHandler) HandlePutUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_user"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	p := model.UserProfile{
		ID:         strings.TrimSpace(req.ID),
		Name:       req.Name,
		Sex:        model.Sex(req.Sex),
		Bodyweight: req.Bodyweight,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		p.DateOfBirth = dob
	}

	if err := h.deps.PutProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       p.ID,
		"complete": p.Complete(),
	})
}

// eventRequest is the payload for POST /events. Teams and memberships are
// optional and only meaningful for team-scored events.
type eventRequest struct {
	ID                string   `json:"id"`
	Code              string   `json:"code"`
	Status            string   `json:"status"`
	IsTeamEvent       bool     `json:"is_team_event"`
	TeamScoringMethod string   `json:"team_scoring_method"`
	Participants      []string `json:"participants"`
	Teams             []struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Members []string `json:"members"`
		Captain string   `json:"captain"`
	} `json:"teams,omitempty"`
}

// HandlePutEvent handles POST /events requests, upserting an event and its
// team roster.
func (h *AdminHandler) HandlePutEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing code")))
		return
	}

	e := model.Event{
		ID:                strings.TrimSpace(req.ID),
		Code:              req.Code,
		Status:            model.EventStatus(req.Status),
		IsTeamEvent:       req.IsTeamEvent,
		TeamScoringMethod: model.TeamScoringMethod(req.TeamScoringMethod),
		Participants:      req.Participants,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = model.EventActive
	}
	if e.IsTeamEvent && e.TeamScoringMethod == "" {
		e.TeamScoringMethod = model.TeamSum
	}

	if err := h.deps.PutEvent(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	for _, t := range req.Teams {
		team := model.Team{ID: strings.TrimSpace(t.ID), Name: t.Name}
		if team.ID == "" {
			team.ID = uuid.NewString()
		}
		if err := h.deps.PutTeam(r.Context(), team); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		for _, member := range t.Members {
			role := model.RoleMember
			if member == t.Captain {
				role = model.RoleCaptain
			}
			m := model.TeamMembership{UserID: member, TeamID: team.ID, Role: role}
			if err := h.deps.PutMembership(r.Context(), m); err != nil {
				writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":   e.ID,
		"code": e.Code,
	})
}
