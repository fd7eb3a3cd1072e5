package aggregate

import (
	"math"
	"sort"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// MemberScore is one member's contribution to a team activity score,
// surfaced for display.
type MemberScore struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name,omitempty"`
	Score  float64 `json:"score"`
}

// TeamActivityScore is a team's combined result for one activity. Contributors
// holds the top members by score; MoreCount is how many were truncated from
// display. Truncation never affects Score.
type TeamActivityScore struct {
	ActivityID   string        `json:"activity_id"`
	Score        float64       `json:"score"`
	Rank         int           `json:"rank,omitempty"`
	Contributors []MemberScore `json:"contributors,omitempty"`
	MoreCount    int           `json:"more_count,omitempty"`
}

// TeamEntry is one team row on a team leaderboard.
type TeamEntry struct {
	TeamID        string                       `json:"team_id"`
	Name          string                       `json:"name,omitempty"`
	TotalScore    float64                      `json:"total_score"`
	WorkoutScores map[string]TeamActivityScore `json:"workout_scores"`
	Rank          int                          `json:"rank"`
}

// TeamLeaderboard combines member bests into ranked team entries under the
// given scoring method.
//
// Per activity: SUM adds every member's best, AVERAGE divides that sum by the
// roster size (absent members drag the mean down, matching the individual
// zero-fill policy), BEST takes the single highest member score. The team
// total is the per-activity values summed across the canonical set, for all
// three methods.
func TeamLeaderboard(teams []model.Team, roster map[string][]model.UserProfile, bestsByUser map[string]map[string]ActivityScore, method model.TeamScoringMethod, canonical catalog.Set, displayTopN int) []TeamEntry {
	byTeam := make(map[string]*TeamEntry, len(teams))
	rankables := make([]Rankable, 0, len(teams))

	for _, team := range teams {
		entry := &TeamEntry{
			TeamID:        team.ID,
			Name:          team.Name,
			WorkoutScores: make(map[string]TeamActivityScore),
		}
		members := roster[team.ID]

		var total float64
		for _, id := range canonical.IDs() {
			as := combineActivity(id, members, bestsByUser, method, displayTopN)
			if as.Score > 0 || len(as.Contributors) > 0 {
				entry.WorkoutScores[id] = as
			}
			total += as.Score
		}
		entry.TotalScore = math.Round(total)

		byTeam[team.ID] = entry
		rankables = append(rankables, Rankable{ID: team.ID, Score: entry.TotalScore})
	}

	// Per-activity team ranks, scoped to teams that scored on the activity.
	for _, id := range canonical.IDs() {
		var scoped []Rankable
		for teamID, e := range byTeam {
			if s, ok := e.WorkoutScores[id]; ok {
				scoped = append(scoped, Rankable{ID: teamID, Score: s.Score})
			}
		}
		for _, r := range Rank(scoped) {
			s := byTeam[r.ID].WorkoutScores[id]
			s.Rank = r.Rank
			byTeam[r.ID].WorkoutScores[id] = s
		}
	}

	ranked := Rank(rankables)
	out := make([]TeamEntry, 0, len(ranked))
	for _, r := range ranked {
		e := byTeam[r.ID]
		e.Rank = r.Rank
		out = append(out, *e)
	}
	return out
}

// combineActivity folds member bests for one activity under the method.
func combineActivity(activityID string, members []model.UserProfile, bestsByUser map[string]map[string]ActivityScore, method model.TeamScoringMethod, displayTopN int) TeamActivityScore {
	as := TeamActivityScore{ActivityID: activityID}

	contributors := make([]MemberScore, 0, len(members))
	var sum, best float64
	for _, m := range members {
		s, ok := bestsByUser[m.ID][activityID]
		if !ok {
			continue
		}
		contributors = append(contributors, MemberScore{UserID: m.ID, Name: m.Name, Score: s.Score})
		sum += s.Score
		if s.Score > best {
			best = s.Score
		}
	}

	switch method {
	case model.TeamAverage:
		if len(members) > 0 {
			as.Score = sum / float64(len(members))
		}
	case model.TeamBest:
		as.Score = best
	default: // SUM
		as.Score = sum
	}

	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Score != contributors[j].Score {
			return contributors[i].Score > contributors[j].Score
		}
		return contributors[i].UserID < contributors[j].UserID
	})
	if displayTopN > 0 && len(contributors) > displayTopN {
		as.MoreCount = len(contributors) - displayTopN
		contributors = contributors[:displayTopN]
	}
	as.Contributors = contributors
	return as
}
