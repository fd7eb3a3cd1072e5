package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
	"github.com/laurencestokes/challenger-events-sub000/pkg/logger"
	"github.com/laurencestokes/challenger-events-sub000/pkg/metrics"
)

// degradedPercentile is substituted when the provider fails for a record.
const degradedPercentile = 50

// Computed is the engine's output for one record. Degraded marks results
// produced by the fallback path after a provider failure.
type Computed struct {
	Score      float64
	Percentile float64
	Degraded   bool
}

// EngineOption applies a configuration option to the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the engine's notion of now, used for age derivation.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine computes Challenger Scores by delegating to an injected Provider.
// It owns the profile precondition check, the sex/age translation to the
// provider's encoding, and the degraded fallback when the provider fails.
type Engine struct {
	provider Provider
	logger   logger.Logger
	now      func() time.Time
}

// NewEngine constructs an Engine around the given provider.
func NewEngine(provider Provider, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("scoring")
	}
	return e
}

// Compute scores a rep-normalized raw value for the given profile.
//
// Unknown activity IDs and incomplete profiles return errors; the caller
// excludes those records. Provider failures do not: the engine substitutes a
// degraded result so one bad record can never take down a whole leaderboard
// computation.
func (e *Engine) Compute(ctx context.Context, activityID string, rawValue float64, profile model.UserProfile) (Computed, error) {
	if _, ok := catalog.Lookup(activityID); !ok {
		return Computed{}, fmt.Errorf("%w: %s", ErrUnknownActivity, activityID)
	}
	if !profile.Complete() {
		return Computed{}, fmt.Errorf("%w: user %s", ErrProfileIncomplete, profile.ID)
	}

	sex := ProviderMale
	if profile.Sex == model.Female {
		sex = ProviderFemale
	}
	age := profile.Age(e.now())

	start := time.Now()
	res, err := e.provider.Score(ctx, activityID, rawValue, sex, age, profile.Bodyweight)
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))

	if err != nil || !isFinite(res.Score) || !isFinite(res.Percentile) {
		e.logger.Warn(ctx, "provider failed; substituting degraded score",
			logger.String("activity", activityID),
			logger.String("user", profile.ID),
			logger.Error(err),
		)
		metrics.RecordScoringDegraded()
		return Computed{Score: rawValue, Percentile: degradedPercentile, Degraded: true}, nil
	}

	return Computed{Score: res.Score, Percentile: res.Percentile}, nil
}

// ScoreRecord normalizes and scores a full submission in one step.
func (e *Engine) ScoreRecord(ctx context.Context, rec model.ScoreRecord, profile model.UserProfile) (model.ScoredRecord, error) {
	normalized := NormalizeRawValue(rec.ActivityID, rec.RawValue, rec.Reps)
	c, err := e.Compute(ctx, rec.ActivityID, normalized, profile)
	if err != nil {
		return model.ScoredRecord{}, err
	}
	return model.ScoredRecord{
		ScoreRecord: rec,
		Score:       c.Score,
		Percentile:  c.Percentile,
		Degraded:    c.Degraded,
	}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
