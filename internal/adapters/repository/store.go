// Package repository defines the in-memory snapshot store feeding the
// aggregation engine.
package repository

import (
	"context"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// Snapshot is an immutable copy of the store's state at one instant. The
// aggregation engine only ever sees snapshots, never live maps; consistency
// between two snapshots is the caller's concern.
type Snapshot struct {
	RecordsByUser map[string][]model.ScoredRecord
	Profiles      map[string]model.UserProfile
	Events        map[string]model.Event // keyed by event ID
	Teams         []model.Team
	Memberships   []model.TeamMembership
}

// Store provides read/write access to submissions, profiles, events, and
// teams. Score records are append-only; the only permitted mutation is the
// admin verification flip.
type Store interface {
	// AddRecord appends a scored submission.
	AddRecord(ctx context.Context, rec model.ScoredRecord) error

	// Record returns one record by ID. Returns ErrRecordNotFound if unknown.
	Record(ctx context.Context, recordID string) (model.ScoredRecord, error)

	// SetVerified flips a record's verification flag and returns the
	// updated record. Returns ErrRecordNotFound if unknown.
	SetVerified(ctx context.Context, recordID string, verified bool) (model.ScoredRecord, error)

	// PutProfile upserts a user profile.
	PutProfile(ctx context.Context, p model.UserProfile) error

	// Profile returns a profile by user ID. Returns ErrUserNotFound if unknown.
	Profile(ctx context.Context, userID string) (model.UserProfile, error)

	// PutEvent upserts an event.
	PutEvent(ctx context.Context, e model.Event) error

	// EventByCode returns an event by its join code. Returns
	// ErrEventNotFound if unknown.
	EventByCode(ctx context.Context, code string) (model.Event, error)

	// PutTeam upserts a team; PutMembership upserts a user's membership.
	PutTeam(ctx context.Context, t model.Team) error
	PutMembership(ctx context.Context, m model.TeamMembership) error

	// Snapshot returns a deep copy of the full state.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Counts returns the number of stored records and profiles.
	Counts(ctx context.Context) (records, users int)
}
