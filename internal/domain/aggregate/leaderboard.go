package aggregate

import (
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// Entry is one user row on an individual leaderboard.
type Entry struct {
	UserID        string                   `json:"user_id"`
	Name          string                   `json:"name,omitempty"`
	TotalScore    float64                  `json:"total_score"`
	WorkoutScores map[string]ActivityScore `json:"workout_scores"`
	Rank          int                      `json:"rank"`
}

// Leaderboard computes ranked entries for the given users over the canonical
// set. verifiedOnly selects the verified reduction; otherwise every record
// counts. Users with no scoreable records still appear, with a zero total.
//
// The returned slice is ordered by rank. Per-activity ranks are stamped into
// each entry's WorkoutScores, computed independently of the overall ranking.
func Leaderboard(profiles []model.UserProfile, recordsByUser map[string][]model.ScoredRecord, canonical catalog.Set, verifiedOnly bool) []Entry {
	byUser := make(map[string]*Entry, len(profiles))
	rankables := make([]Rankable, 0, len(profiles))

	for _, p := range profiles {
		t := UserTotals(recordsByUser[p.ID], canonical)
		best, total := t.PerActivityBest, t.Total
		if verifiedOnly {
			best, total = t.VerifiedBest, t.VerifiedTotal
		}
		byUser[p.ID] = &Entry{
			UserID:        p.ID,
			Name:          p.Name,
			TotalScore:    total,
			WorkoutScores: best,
		}
		rankables = append(rankables, Rankable{ID: p.ID, Score: total})
	}

	// Per-activity ranks, each activity scoped independently over the users
	// that actually have a score for it.
	for _, id := range canonical.IDs() {
		var scoped []Rankable
		for userID, e := range byUser {
			if s, ok := e.WorkoutScores[id]; ok {
				scoped = append(scoped, Rankable{ID: userID, Score: s.Score})
			}
		}
		for _, r := range Rank(scoped) {
			s := byUser[r.ID].WorkoutScores[id]
			s.Rank = r.Rank
			byUser[r.ID].WorkoutScores[id] = s
		}
	}

	ranked := Rank(rankables)
	out := make([]Entry, 0, len(ranked))
	for _, r := range ranked {
		e := byUser[r.ID]
		e.Rank = r.Rank
		out = append(out, *e)
	}
	return out
}

// ActivityLeaderboard re-scopes computed entries to a single activity,
// returning only users with a score for it, ordered by that activity's rank.
func ActivityLeaderboard(entries []Entry, activityID string) []Entry {
	var scoped []Rankable
	byUser := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if s, ok := e.WorkoutScores[activityID]; ok {
			scoped = append(scoped, Rankable{ID: e.UserID, Score: s.Score})
			byUser[e.UserID] = e
		}
	}
	ranked := Rank(scoped)
	out := make([]Entry, 0, len(ranked))
	for _, r := range ranked {
		e := byUser[r.ID]
		e.Rank = r.Rank
		e.TotalScore = r.Score
		out = append(out, e)
	}
	return out
}
