package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
	"github.com/laurencestokes/challenger-events-sub000/pkg/metrics"
)

// defaultShardCount bounds write contention on the record shards.
const defaultShardCount = 8

// recordShard holds the records of the users hashed onto it.
type recordShard struct {
	mu      sync.RWMutex
	byUser  map[string][]model.ScoredRecord
	records int
}

// recordRef locates a record by shard and position for verification flips.
type recordRef struct {
	shard int
	user  string
	index int
}

// ShardedStore implements Store with per-shard locking for record writes and
// a single lock for the smaller profile/event/team tables.
type ShardedStore struct {
	shardCount int
	shards     []*recordShard

	// recordIndex maps record ID to its location. Guarded by indexMu.
	indexMu     sync.RWMutex
	recordIndex map[string]recordRef

	// refMu guards profiles, events, teams, and memberships.
	refMu       sync.RWMutex
	profiles    map[string]model.UserProfile
	events      map[string]model.Event
	eventByCode map[string]string // code -> event ID
	teams       map[string]model.Team
	memberships map[string]model.TeamMembership // keyed userID+"/"+teamID
}

// NewShardedStore creates a store with the given options.
func NewShardedStore(_ context.Context, opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shardCount:  defaultShardCount,
		recordIndex: make(map[string]recordRef),
		profiles:    make(map[string]model.UserProfile),
		events:      make(map[string]model.Event),
		eventByCode: make(map[string]string),
		teams:       make(map[string]model.Team),
		memberships: make(map[string]model.TeamMembership),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*recordShard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &recordShard{byUser: make(map[string][]model.ScoredRecord)}
	}
	metrics.UpdateRepositoryShardCount(s.shardCount)
	return s
}

// shardFor hashes a user ID onto a shard index.
func (s *ShardedStore) shardFor(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(s.shardCount))
}

// AddRecord appends a scored submission.
func (s *ShardedStore) AddRecord(_ context.Context, rec model.ScoredRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if _, exists := s.recordIndex[rec.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}

	idx := s.shardFor(rec.UserID)
	shard := s.shards[idx]
	shard.mu.Lock()
	shard.byUser[rec.UserID] = append(shard.byUser[rec.UserID], rec)
	pos := len(shard.byUser[rec.UserID]) - 1
	shard.records++
	shard.mu.Unlock()

	s.recordIndex[rec.ID] = recordRef{shard: idx, user: rec.UserID, index: pos}
	return nil
}

// Record returns one record by ID.
func (s *ShardedStore) Record(_ context.Context, recordID string) (model.ScoredRecord, error) {
	s.indexMu.RLock()
	ref, ok := s.recordIndex[recordID]
	s.indexMu.RUnlock()
	if !ok {
		return model.ScoredRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}

	shard := s.shards[ref.shard]
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return shard.byUser[ref.user][ref.index], nil
}

// SetVerified flips a record's verification flag.
func (s *ShardedStore) SetVerified(_ context.Context, recordID string, verified bool) (model.ScoredRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.indexMu.RLock()
	ref, ok := s.recordIndex[recordID]
	s.indexMu.RUnlock()
	if !ok {
		return model.ScoredRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}

	shard := s.shards[ref.shard]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	rec := shard.byUser[ref.user][ref.index]
	rec.Verified = verified
	shard.byUser[ref.user][ref.index] = rec
	return rec, nil
}

// PutProfile upserts a user profile.
func (s *ShardedStore) PutProfile(_ context.Context, p model.UserProfile) error {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.profiles[p.ID] = p
	metrics.UpdateRepositoryUsersTotal(len(s.profiles))
	return nil
}

// Profile returns a profile by user ID.
func (s *ShardedStore) Profile(_ context.Context, userID string) (model.UserProfile, error) {
	s.refMu.RLock()
	defer s.refMu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return model.UserProfile{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return p, nil
}

// PutEvent upserts an event and its code index.
func (s *ShardedStore) PutEvent(_ context.Context, e model.Event) error {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	if prev, ok := s.events[e.ID]; ok && prev.Code != e.Code {
		delete(s.eventByCode, prev.Code)
	}
	s.events[e.ID] = e
	s.eventByCode[e.Code] = e.ID
	return nil
}

// EventByCode returns an event by its join code.
func (s *ShardedStore) EventByCode(_ context.Context, code string) (model.Event, error) {
	s.refMu.RLock()
	defer s.refMu.RUnlock()
	id, ok := s.eventByCode[code]
	if !ok {
		return model.Event{}, fmt.Errorf("%w: code %s", ErrEventNotFound, code)
	}
	return s.events[id], nil
}

// PutTeam upserts a team.
func (s *ShardedStore) PutTeam(_ context.Context, t model.Team) error {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.teams[t.ID] = t
	return nil
}

// PutMembership upserts a user's team membership.
func (s *ShardedStore) PutMembership(_ context.Context, m model.TeamMembership) error {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.memberships[m.UserID+"/"+m.TeamID] = m
	return nil
}

// Snapshot returns a deep copy of the full state.
func (s *ShardedStore) Snapshot(_ context.Context) (Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	snap := Snapshot{
		RecordsByUser: make(map[string][]model.ScoredRecord),
		Profiles:      make(map[string]model.UserProfile),
		Events:        make(map[string]model.Event),
	}

	for _, shard := range s.shards {
		shard.mu.RLock()
		for user, recs := range shard.byUser {
			cp := make([]model.ScoredRecord, len(recs))
			copy(cp, recs)
			snap.RecordsByUser[user] = cp
		}
		shard.mu.RUnlock()
	}

	s.refMu.RLock()
	for id, p := range s.profiles {
		snap.Profiles[id] = p
	}
	for id, e := range s.events {
		snap.Events[id] = e
	}
	for _, t := range s.teams {
		snap.Teams = append(snap.Teams, t)
	}
	for _, m := range s.memberships {
		snap.Memberships = append(snap.Memberships, m)
	}
	s.refMu.RUnlock()

	return snap, nil
}

// Counts returns stored record and profile counts.
func (s *ShardedStore) Counts(_ context.Context) (records, users int) {
	for _, shard := range s.shards {
		shard.mu.RLock()
		records += shard.records
		shard.mu.RUnlock()
	}
	s.refMu.RLock()
	users = len(s.profiles)
	s.refMu.RUnlock()
	metrics.UpdateRepositoryRecordsTotal(records)
	return records, users
}
