// Package scoring defines the external score-provider contract, raw-value
// normalization, and the engine that turns submissions into Challenger Scores.
package scoring

import "context"

// Provider sex encoding. Profiles use M/F; the provider expects these.
const (
	ProviderMale   = "male"
	ProviderFemale = "female"
)

// Result is the provider's output for one activity result.
type Result struct {
	Score      float64 `json:"score"`
	Percentile float64 `json:"percentile"`
}

// Provider abstracts the external percentile-normalization package. It maps a
// rep-normalized raw value plus athlete attributes to a Challenger Score, one
// function per activity behind a single dispatching method.
type Provider interface {
	// Score computes the normalized score for activityID, honoring ctx for
	// cancellation. rawValue must already be rep-normalized.
	Score(ctx context.Context, activityID string, rawValue float64, sex string, age int, bodyweight float64) (Result, error)

	// PaceToWatts converts a 500m split in seconds to average power. Used
	// only on the rowing intake path.
	PaceToWatts(split500 float64) float64
}
