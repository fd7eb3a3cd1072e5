package scoring

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
)

// Default static-provider calibration constants.
const (
	baselineScore          = 500.0 // score awarded for exactly the reference performance
	maxScore               = 1000.0
	referenceBodyweight    = 80.0 // kg, reference athlete
	allometricExponent     = 2.0 / 3.0
	defaultPercentileSlope = 120.0
	defaultRandomSeed      = 42
	paceWattsCoefficient   = 2.80 // Concept2 pace-to-watts constant
)

// defaultReferences map each activity to the raw performance that earns the
// baseline score for the reference athlete (male, 30y, 80kg). WEIGHT and
// DISTANCE references are "bigger is better"; TIME references are splits.
var defaultReferences = map[string]float64{
	catalog.Squat:    140, // kg
	catalog.Bench:    100,
	catalog.Deadlift: 180,
	catalog.Row500:   90, // seconds
	catalog.Row2000:  420,
	catalog.Bike500:  45,
	catalog.Ski500:   95,
	catalog.Row4Min:  1050, // meters
}

// defaultFemaleFactors scale the reference performance for female athletes.
var defaultFemaleFactors = map[catalog.InputType]float64{
	catalog.Weight:   0.62,
	catalog.Time:     1.12, // reference split is slower
	catalog.Distance: 0.85,
}

// StaticOption applies a configuration option to the StaticProvider.
type StaticOption func(*StaticProvider)

// WithReferenceValues overrides reference performances per activity.
func WithReferenceValues(refs map[string]float64) StaticOption {
	return func(p *StaticProvider) {
		for id, v := range refs {
			if v > 0 {
				p.references[id] = v
			}
		}
	}
}

// WithPercentileSlope tunes the logistic mapping from score to percentile.
func WithPercentileSlope(slope float64) StaticOption {
	return func(p *StaticProvider) {
		if slope > 0 {
			p.percentileSlope = slope
		}
	}
}

// WithSimulatedLatency makes the provider sleep for a random duration in the
// given range before answering, modeling the remote package's call cost.
// Disabled by default.
func WithSimulatedLatency(minLatency, maxLatency time.Duration) StaticOption {
	return func(p *StaticProvider) {
		if minLatency > 0 && maxLatency > minLatency {
			p.minLatency = minLatency
			p.maxLatency = maxLatency
		}
	}
}

// StaticProvider is an in-memory stand-in for the closed percentile package.
// It reproduces the contract shape (per-activity scoring against sex, age, and
// bodyweight) with published calibration tables so tests are deterministic.
type StaticProvider struct {
	references      map[string]float64
	femaleFactors   map[catalog.InputType]float64
	percentileSlope float64
	minLatency      time.Duration
	maxLatency      time.Duration
	rng             *rand.Rand
}

// NewStaticProvider creates a provider with default calibration.
func NewStaticProvider(opts ...StaticOption) *StaticProvider {
	p := &StaticProvider{
		references:      make(map[string]float64, len(defaultReferences)),
		femaleFactors:   defaultFemaleFactors,
		percentileSlope: defaultPercentileSlope,
		rng:             rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible latency
	}
	for id, v := range defaultReferences {
		p.references[id] = v
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Score maps a raw performance to a score/percentile pair.
func (p *StaticProvider) Score(ctx context.Context, activityID string, rawValue float64, sex string, age int, bodyweight float64) (Result, error) {
	if p.maxLatency > p.minLatency {
		latency := p.minLatency + time.Duration(p.rng.Int63n(int64(p.maxLatency-p.minLatency)))
		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(latency):
		}
	}

	a, ok := catalog.Lookup(activityID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownActivity, activityID)
	}
	ref, ok := p.references[activityID]
	if !ok {
		return Result{}, fmt.Errorf("%w: no reference for %s", ErrUnknownActivity, activityID)
	}
	if rawValue <= 0 {
		return Result{}, fmt.Errorf("non-positive raw value %v for %s", rawValue, activityID)
	}

	expected := ref * ageFactor(age)
	if sex == ProviderFemale {
		expected *= p.femaleFactors[a.InputType]
	}
	if a.InputType == catalog.Weight {
		expected *= math.Pow(bodyweight/referenceBodyweight, allometricExponent)
	}

	var score float64
	if a.InputType == catalog.Time {
		// Lower time beats the reference.
		score = baselineScore * expected / rawValue
	} else {
		score = baselineScore * rawValue / expected
	}
	score = math.Round(math.Max(0, math.Min(maxScore, score)))

	percentile := 100 / (1 + math.Exp(-(score-baselineScore)/p.percentileSlope))
	percentile = math.Round(percentile*10) / 10

	return Result{Score: score, Percentile: percentile}, nil
}

// PaceToWatts converts a 500m split in seconds to average watts using the
// standard erg power curve.
func (p *StaticProvider) PaceToWatts(split500 float64) float64 {
	if split500 <= 0 {
		return 0
	}
	pace := split500 / 500 // seconds per meter
	return paceWattsCoefficient / math.Pow(pace, 3)
}

// ageFactor scales the expected performance by age: flat through the prime
// years, declining references outside them.
func ageFactor(age int) float64 {
	switch {
	case age > 35:
		return math.Max(0.5, 1-0.005*float64(age-35))
	case age < 20:
		return math.Max(0.7, 1-0.01*float64(20-age))
	default:
		return 1
	}
}
