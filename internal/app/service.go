// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/laurencestokes/challenger-events-sub000/internal/adapters/http/api"
	submissionqueue "github.com/laurencestokes/challenger-events-sub000/internal/adapters/mq/queue"
	workerpool "github.com/laurencestokes/challenger-events-sub000/internal/adapters/mq/worker"
	"github.com/laurencestokes/challenger-events-sub000/internal/adapters/repository"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/achievement"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/aggregate"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/dedupe"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/scoring"
	"github.com/laurencestokes/challenger-events-sub000/pkg/logger"
	"github.com/laurencestokes/challenger-events-sub000/pkg/metrics"
)

// Service implements the API dependencies for the competition scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	deduper  dedupe.Deduper
	queue    submissionqueue.Queue
	engine   *scoring.Engine
	pool     *workerpool.Pool
	provider scoring.Provider

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	shardCount      int
	teamDisplayTopN int
	exclusions      []string
	canonical       catalog.Set

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the repository shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithProvider injects the external scoring provider. Defaults to the
// built-in static provider.
func WithProvider(p scoring.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithCanonicalExclusions names the activity IDs left out of the canonical
// averaging set.
func WithCanonicalExclusions(ids []string) Option {
	return func(s *Service) {
		s.exclusions = ids
	}
}

// WithTeamDisplayTopN caps how many contributors a team activity score lists.
func WithTeamDisplayTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.teamDisplayTopN = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       100000,
		dedupeSize:      50000,
		shardCount:      8,
		teamDisplayTopN: 3,
		exclusions:      catalog.DefaultExclusions,
		stopCh:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.canonical = catalog.NewSet(s.exclusions)

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoring service...")

	s.store = repository.NewShardedStore(ctx,
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)
	if s.provider == nil {
		s.provider = scoring.NewStaticProvider()
	}
	s.engine = scoring.NewEngine(s.provider,
		scoring.WithLogger(s.logger.Named("scoring")),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.store, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
		logger.Int("canonicalActivities", s.canonical.Len()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping scoring service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(context.Background())
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records it
// if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a submission ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a raw record for asynchronous scoring. Returns false on
// backpressure.
func (s *Service) Enqueue(ctx context.Context, rec model.ScoreRecord) bool {
	s.logger.Debug(ctx, "enqueueing submission",
		logger.String("submissionID", rec.ID),
		logger.String("userID", rec.UserID),
		logger.String("activity", rec.ActivityID),
		logger.Float64("rawValue", rec.RawValue),
	)
	ok := s.queue.Enqueue(ctx, rec)
	if ok {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return ok
}

// SetVerified flips a stored record's verification flag.
func (s *Service) SetVerified(ctx context.Context, recordID string, verified bool) (model.ScoredRecord, error) {
	return s.store.SetVerified(ctx, recordID, verified)
}

// PutProfile upserts a user profile, for seeding and admin tooling.
func (s *Service) PutProfile(ctx context.Context, p model.UserProfile) error {
	return s.store.PutProfile(ctx, p)
}

// PutEvent upserts a competition event.
func (s *Service) PutEvent(ctx context.Context, e model.Event) error {
	return s.store.PutEvent(ctx, e)
}

// PutTeam upserts a team.
func (s *Service) PutTeam(ctx context.Context, t model.Team) error {
	return s.store.PutTeam(ctx, t)
}

// PutMembership upserts a user's team membership.
func (s *Service) PutMembership(ctx context.Context, m model.TeamMembership) error {
	return s.store.PutMembership(ctx, m)
}

// Leaderboard computes the overall leaderboard over the current snapshot.
// activityID, when set, re-scopes the board to that single activity.
func (s *Service) Leaderboard(ctx context.Context, limit int, activityID string, verifiedOnly bool) ([]aggregate.Entry, error) {
	start := time.Now()
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		metrics.RecordLeaderboardError()
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}

	entries := aggregate.Leaderboard(profilesOf(snap), snap.RecordsByUser, s.canonical, verifiedOnly)
	if activityID != "" {
		entries = aggregate.ActivityLeaderboard(entries, activityID)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	metrics.RecordLeaderboardComputation(float64(time.Since(start).Milliseconds()))
	return entries, nil
}

// EventLeaderboard computes standings scoped to one event's submissions:
// always the individual view; additionally the team view when the event is
// team-scored.
func (s *Service) EventLeaderboard(ctx context.Context, code string) (api.EventLeaderboard, error) {
	start := time.Now()
	event, err := s.store.EventByCode(ctx, code)
	if err != nil {
		return api.EventLeaderboard{}, err
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		metrics.RecordLeaderboardError()
		return api.EventLeaderboard{}, fmt.Errorf("snapshot failed: %w", err)
	}

	// Scope every user's history to this event's submissions. Event-context
	// records are effectively verified, so the unverified reduction suffices.
	participants := make(map[string]struct{}, len(event.Participants))
	for _, id := range event.Participants {
		participants[id] = struct{}{}
	}
	eventRecords := make(map[string][]model.ScoredRecord)
	for userID, recs := range snap.RecordsByUser {
		for _, r := range recs {
			if r.EventID != event.ID {
				continue
			}
			eventRecords[userID] = append(eventRecords[userID], r)
			participants[userID] = struct{}{}
		}
	}
	var profiles []model.UserProfile
	for id := range participants {
		if p, ok := snap.Profiles[id]; ok {
			profiles = append(profiles, p)
		}
	}

	board := api.EventLeaderboard{
		EventID:     event.ID,
		Code:        event.Code,
		Status:      event.Status,
		IsTeamEvent: event.IsTeamEvent,
		Individuals: aggregate.Leaderboard(profiles, eventRecords, s.canonical, false),
	}

	if event.IsTeamEvent {
		board.Teams = s.teamBoard(event, snap, profiles, eventRecords)
	}

	metrics.RecordLeaderboardComputation(float64(time.Since(start).Milliseconds()))
	return board, nil
}

// teamBoard assembles the roster and per-member bests, then delegates to the
// team aggregation.
func (s *Service) teamBoard(event model.Event, snap repository.Snapshot, profiles []model.UserProfile, eventRecords map[string][]model.ScoredRecord) []aggregate.TeamEntry {
	teamOf := make(map[string]string, len(snap.Memberships))
	for _, m := range snap.Memberships {
		teamOf[m.UserID] = m.TeamID
	}

	roster := make(map[string][]model.UserProfile)
	for _, p := range profiles {
		if teamID, ok := teamOf[p.ID]; ok {
			roster[teamID] = append(roster[teamID], p)
		}
	}

	bestsByUser := make(map[string]map[string]aggregate.ActivityScore, len(profiles))
	for _, p := range profiles {
		t := aggregate.UserTotals(eventRecords[p.ID], s.canonical)
		bestsByUser[p.ID] = t.PerActivityBest
	}

	// Only teams with at least one rostered participant appear.
	var teams []model.Team
	for _, t := range snap.Teams {
		if len(roster[t.ID]) > 0 {
			teams = append(teams, t)
		}
	}

	return aggregate.TeamLeaderboard(teams, roster, bestsByUser, event.TeamScoringMethod, s.canonical, s.teamDisplayTopN)
}

// Rank returns the overall leaderboard entry for a given user id.
func (s *Service) Rank(ctx context.Context, userID string) (aggregate.Entry, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return aggregate.Entry{}, fmt.Errorf("snapshot failed: %w", err)
	}
	if _, ok := snap.Profiles[userID]; !ok {
		return aggregate.Entry{}, fmt.Errorf("rank lookup for %s: %w", userID, repository.ErrUserNotFound)
	}

	entries := aggregate.Leaderboard(profilesOf(snap), snap.RecordsByUser, s.canonical, false)
	for _, e := range entries {
		if e.UserID == userID {
			return e, nil
		}
	}
	return aggregate.Entry{}, fmt.Errorf("rank lookup for %s: %w", userID, repository.ErrUserNotFound)
}

// Achievements evaluates the badge catalog against a user's full history.
func (s *Service) Achievements(ctx context.Context, userID string) ([]achievement.Result, error) {
	if _, err := s.store.Profile(ctx, userID); err != nil {
		return nil, fmt.Errorf("achievement lookup for %s: %w", userID, err)
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}
	return achievement.Evaluate(snap.RecordsByUser[userID], s.canonical), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"shardCount":  s.shardCount,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		records, users := s.store.Counts(ctx)

		stats["queueLength"] = queueLen
		stats["totalRecords"] = records
		stats["totalUsers"] = users

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateRepositoryRecordsTotal(records)
		metrics.UpdateRepositoryUsersTotal(users)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// profilesOf flattens the snapshot's profile map.
func profilesOf(snap repository.Snapshot) []model.UserProfile {
	profiles := make([]model.UserProfile, 0, len(snap.Profiles))
	for _, p := range snap.Profiles {
		profiles = append(profiles, p)
	}
	return profiles
}
