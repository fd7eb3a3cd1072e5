// Package aggregate implements the pure leaderboard computation: per-user
// best-score reduction, team aggregation policies, and competition ranking.
//
// Everything in this package operates on immutable snapshots passed in by the
// caller and returns fresh values. There is no internal state, caching, or
// concurrency; repeated calls on identical input produce identical output.
package aggregate

import (
	"math"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// ActivityScore is a user's best result for one activity.
type ActivityScore struct {
	ActivityID string  `json:"activity_id"`
	Score      float64 `json:"score"`
	RawValue   float64 `json:"raw_value"`
	Reps       int     `json:"reps,omitempty"`
	Rank       int     `json:"rank,omitempty"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// Totals is the output of the per-user best-score reduction. Total includes
// every record regardless of verification; VerifiedTotal only effectively
// verified ones. Both average over the full canonical set, so activities a
// user never attempted count as zero.
type Totals struct {
	Total           float64
	VerifiedTotal   float64
	PerActivityBest map[string]ActivityScore // best among all records
	VerifiedBest    map[string]ActivityScore // best among verified records
}

// UserTotals reduces a user's scored records against the given canonical set.
// Records for activities outside the set are ignored entirely.
func UserTotals(records []model.ScoredRecord, canonical catalog.Set) Totals {
	t := Totals{
		PerActivityBest: make(map[string]ActivityScore),
		VerifiedBest:    make(map[string]ActivityScore),
	}
	for _, r := range records {
		if !canonical.Contains(r.ActivityID) {
			continue
		}
		s := ActivityScore{
			ActivityID: r.ActivityID,
			Score:      r.Score,
			RawValue:   r.RawValue,
			Reps:       r.Reps,
			Degraded:   r.Degraded,
		}
		if best, ok := t.PerActivityBest[r.ActivityID]; !ok || s.Score > best.Score {
			t.PerActivityBest[r.ActivityID] = s
		}
		if r.EffectivelyVerified() {
			if best, ok := t.VerifiedBest[r.ActivityID]; !ok || s.Score > best.Score {
				t.VerifiedBest[r.ActivityID] = s
			}
		}
	}
	t.Total = averageOverSet(t.PerActivityBest, canonical)
	t.VerifiedTotal = averageOverSet(t.VerifiedBest, canonical)
	return t
}

// averageOverSet sums best scores and divides by the size of the whole set.
// Missing activities contribute zero rather than shrinking the denominator.
func averageOverSet(best map[string]ActivityScore, set catalog.Set) float64 {
	if set.Len() == 0 {
		return 0
	}
	var sum float64
	for _, id := range set.IDs() {
		if s, ok := best[id]; ok {
			sum += s.Score
		}
	}
	return math.Round(sum / float64(set.Len()))
}
