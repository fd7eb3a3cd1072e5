// Package achievement defines the badge catalog and its threshold evaluation.
package achievement

import (
	"fmt"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/aggregate"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// RequirementType selects which reduction a threshold is checked against.
type RequirementType string

// Requirement types.
const (
	// VerifiedScoreMin checks the single highest verified score on any
	// canonical activity.
	VerifiedScoreMin RequirementType = "VERIFIED_SCORE_MIN"
	// StrengthAverage checks the verified canonical average restricted to
	// strength activities.
	StrengthAverage RequirementType = "STRENGTH_AVERAGE"
	// EnduranceAverage checks the verified canonical average restricted to
	// endurance activities.
	EnduranceAverage RequirementType = "ENDURANCE_AVERAGE"
	// HybridAverage checks the verified average over the full canonical set.
	HybridAverage RequirementType = "HYBRID_AVERAGE"
)

// specialistThreshold is the category-average score that earns the specialist
// and hybrid badges.
const specialistThreshold = 500

// Requirement is the earning condition for one achievement.
type Requirement struct {
	Type      RequirementType `json:"type"`
	Threshold float64         `json:"threshold"`
}

// Achievement is one static catalog entry.
type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Requirement Requirement `json:"requirement"`
}

// Result is the evaluation outcome for one achievement. Score is the value
// the requirement was checked against, whether or not it was earned.
type Result struct {
	Achievement Achievement `json:"achievement"`
	Earned      bool        `json:"earned"`
	Score       float64     `json:"score"`
}

// Catalog returns the full achievement catalog in evaluation order.
func Catalog() []Achievement {
	out := []Achievement{
		{ID: "competitor", Name: "Competitor", Requirement: Requirement{Type: VerifiedScoreMin, Threshold: 1}},
	}
	for threshold := 100; threshold <= 900; threshold += 100 {
		out = append(out, Achievement{
			ID:          fmt.Sprintf("club_%d", threshold),
			Name:        fmt.Sprintf("%d Club", threshold),
			Requirement: Requirement{Type: VerifiedScoreMin, Threshold: float64(threshold)},
		})
	}
	out = append(out,
		Achievement{ID: "strength_specialist", Name: "Strength Specialist", Requirement: Requirement{Type: StrengthAverage, Threshold: specialistThreshold}},
		Achievement{ID: "endurance_specialist", Name: "Endurance Specialist", Requirement: Requirement{Type: EnduranceAverage, Threshold: specialistThreshold}},
		Achievement{ID: "hybrid_athlete", Name: "Hybrid Athlete", Requirement: Requirement{Type: HybridAverage, Threshold: specialistThreshold}},
	)
	return out
}

// Evaluate checks a user's full scored history against the catalog. Stateless
// and side-effect-free; callers own persistence and notification.
func Evaluate(history []model.ScoredRecord, canonical catalog.Set) []Result {
	totals := aggregate.UserTotals(history, canonical)
	strength := aggregate.UserTotals(history, canonical.Restrict(catalog.Strength))
	endurance := aggregate.UserTotals(history, canonical.Restrict(catalog.Endurance))

	var bestVerified float64
	for _, s := range totals.VerifiedBest {
		if s.Score > bestVerified {
			bestVerified = s.Score
		}
	}

	results := make([]Result, 0)
	for _, a := range Catalog() {
		var score float64
		switch a.Requirement.Type {
		case VerifiedScoreMin:
			score = bestVerified
		case StrengthAverage:
			score = strength.VerifiedTotal
		case EnduranceAverage:
			score = endurance.VerifiedTotal
		case HybridAverage:
			score = totals.VerifiedTotal
		}
		results = append(results, Result{
			Achievement: a,
			Earned:      score >= a.Requirement.Threshold,
			Score:       score,
		})
	}
	return results
}
