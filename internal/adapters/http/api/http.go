// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/laurencestokes/challenger-events-sub000/internal/adapters/repository"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/achievement"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/aggregate"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/dedupe"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// Dependencies bundles everything the HTTP handlers need from the application
// service, keeping the handler layer loosely coupled to implementations.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async scoring. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, sub model.ScoreRecord) bool

	// SetVerified flips a record's verification state.
	SetVerified(ctx context.Context, recordID string, verified bool) (model.ScoredRecord, error)

	// Reference-data writes used by seeding and admin tooling.
	PutProfile(ctx context.Context, p model.UserProfile) error
	PutEvent(ctx context.Context, e model.Event) error
	PutTeam(ctx context.Context, t model.Team) error
	PutMembership(ctx context.Context, m model.TeamMembership) error

	// Read operations over the current snapshot.
	Leaderboard(ctx context.Context, limit int, activityID string, verifiedOnly bool) ([]aggregate.Entry, error)
	EventLeaderboard(ctx context.Context, code string) (EventLeaderboard, error)
	Rank(ctx context.Context, userID string) (aggregate.Entry, error)
	Achievements(ctx context.Context, userID string) ([]achievement.Result, error)
}

// EventLeaderboard is the read shape for one event's standings: the
// individual view always, the team view when the event is team-scored.
type EventLeaderboard struct {
	EventID     string                `json:"event_id"`
	Code        string                `json:"code"`
	Status      model.EventStatus     `json:"status"`
	IsTeamEvent bool                  `json:"is_team_event"`
	Individuals []aggregate.Entry     `json:"individuals"`
	Teams       []aggregate.TeamEntry `json:"teams,omitempty"`
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	scoresHandler       *ScoresHandler
	leaderboardHandler  *LeaderboardHandler
	eventsHandler       *EventsHandler
	rankHandler         *RankHandler
	achievementsHandler *AchievementsHandler
	adminHandler        *AdminHandler
}

// NewServer creates an API server with all handlers. maxLimit caps the
// leaderboard page size.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		scoresHandler:       NewScoresHandler(deps),
		leaderboardHandler:  NewLeaderboardHandler(deps, maxLimit),
		eventsHandler:       NewEventsHandler(deps),
		rankHandler:         NewRankHandler(deps),
		achievementsHandler: NewAchievementsHandler(deps),
		adminHandler:        NewAdminHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/scores/", MetricsMiddleware(s.scoresHandler.HandleVerify, "scores_verify"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/events", MetricsMiddleware(s.adminHandler.HandlePutEvent, "put_event"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleGetEventLeaderboard, "event_leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/users", MetricsMiddleware(s.adminHandler.HandlePutUser, "put_user"))
	mux.HandleFunc("/users/", MetricsMiddleware(s.achievementsHandler.HandleGetAchievements, "achievements"))
}

type ackResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id,omitempty"`
	Duplicate    bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404s.
func isNotFound(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, repository.ErrRecordNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrEventNotFound):
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
