// Package model contains domain models passed between layers.
package model

import "time"

// Sex is the profile-level sex encoding. The external scoring provider uses a
// different encoding; translation happens inside the scoring engine.
type Sex string

// Profile sex values.
const (
	Male   Sex = "M"
	Female Sex = "F"
)

// EventStatus is the lifecycle state of a competition event.
type EventStatus string

// Event lifecycle states.
const (
	EventDraft     EventStatus = "DRAFT"
	EventActive    EventStatus = "ACTIVE"
	EventCompleted EventStatus = "COMPLETED"
	EventCancelled EventStatus = "CANCELLED"
)

// TeamScoringMethod is the policy for combining member scores into a team
// total.
type TeamScoringMethod string

// Team scoring policies.
const (
	TeamSum     TeamScoringMethod = "SUM"
	TeamAverage TeamScoringMethod = "AVERAGE"
	TeamBest    TeamScoringMethod = "BEST"
)

// TeamRole distinguishes captains from regular members.
type TeamRole string

// Team membership roles.
const (
	RoleCaptain TeamRole = "CAPTAIN"
	RoleMember  TeamRole = "MEMBER"
)

// ScoreRecord is one submitted result. Records are append-only: the only
// permitted mutation after ingestion is an admin flipping Verified.
type ScoreRecord struct {
	ID          string
	UserID      string
	ActivityID  string
	RawValue    float64 // kg for WEIGHT, seconds for TIME, meters for DISTANCE
	Reps        int     // 0 means unset; meaningful only when the activity supports reps
	EventID     string  // empty means a standalone/personal submission
	Verified    bool
	SubmittedAt time.Time
	Notes       string
}

// EffectivelyVerified reports whether the record counts as verified for
// scoring. Event-context submissions are implicitly trusted.
func (r ScoreRecord) EffectivelyVerified() bool {
	return r.Verified || r.EventID != ""
}

// ScoredRecord pairs a ScoreRecord with the engine's output for it. Degraded
// marks results produced by the fallback path after a provider failure.
type ScoredRecord struct {
	ScoreRecord
	Score      float64
	Percentile float64
	Degraded   bool
}

// UserProfile holds the inputs the scoring provider requires. A score cannot
// be computed for a user missing any of Sex, DateOfBirth, or Bodyweight.
type UserProfile struct {
	ID          string
	Name        string
	Sex         Sex
	DateOfBirth time.Time
	Bodyweight  float64 // kg
}

// Complete reports whether the profile carries every field scoring needs.
func (p UserProfile) Complete() bool {
	return (p.Sex == Male || p.Sex == Female) && !p.DateOfBirth.IsZero() && p.Bodyweight > 0
}

// Age returns the profile's age in whole years at the given instant,
// decremented when the birthday has not yet occurred that calendar year.
func (p UserProfile) Age(at time.Time) int {
	years := at.Year() - p.DateOfBirth.Year()
	anniversary := time.Date(at.Year(), p.DateOfBirth.Month(), p.DateOfBirth.Day(), 0, 0, 0, 0, at.Location())
	if at.Before(anniversary) {
		years--
	}
	return years
}

// Event represents a competition event.
type Event struct {
	ID                string
	Code              string
	Status            EventStatus
	IsTeamEvent       bool
	TeamScoringMethod TeamScoringMethod // meaningful only when IsTeamEvent
	Participants      []string          // user IDs
}

// Team is a named roster referenced by memberships.
type Team struct {
	ID   string
	Name string
}

// TeamMembership associates a user with a team. Within one event's leaderboard
// a user is attributed to at most one team.
type TeamMembership struct {
	UserID string
	TeamID string
	Role   TeamRole
}
