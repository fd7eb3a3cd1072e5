package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Profile generation ranges.
const (
	minBirthYearOffset = 18 // youngest athlete is 18
	maxBirthYearOffset = 60 // oldest athlete is 60
	maleWeightMin      = 62.0
	maleWeightRange    = 48.0
	femaleWeightMin    = 48.0
	femaleWeightRange  = 42.0
)

// Raw value generation ranges, by activity input type.
const (
	squatMin, squatRange       = 60.0, 160.0
	benchMin, benchRange       = 40.0, 120.0
	deadliftMin, deadliftRange = 80.0, 200.0
	sprintTimeMin, sprintRange = 75.0, 50.0   // 500m splits, seconds
	row2kMin, row2kRange       = 380.0, 200.0 // 2000m row, seconds
	bikeTimeMin, bikeRange     = 35.0, 25.0   // 500m bike erg, seconds
	distanceMin, distanceRange = 850.0, 400.0 // 4-minute row, meters
	maxReps                    = 5
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, n).
func getRandomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateUsers creates the specified number of complete athlete profiles.
func generateUsers(ctx context.Context, config *Config) ([]User, error) {
	logger.Get().Info(ctx, "generating athlete profiles", logger.Int("numUsers", config.NumUsers))

	users := make([]User, config.NumUsers)
	for i := range users {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during user generation: %w", ctx.Err())
		default:
		}
		users[i] = generateSingleUser(i)
	}

	logger.Get().Info(ctx, "generated athlete profiles", logger.Int("count", len(users)))
	return users, nil
}

// generateSingleUser creates one complete profile. Every generated profile is
// scoreable: sex, date of birth, and bodyweight are always populated.
func generateSingleUser(index int) User {
	sex := "M"
	weight := maleWeightMin + getRandomFloat()*maleWeightRange
	if getRandomInt(2) == 1 {
		sex = "F"
		weight = femaleWeightMin + getRandomFloat()*femaleWeightRange
	}

	yearOffset := minBirthYearOffset + getRandomInt(maxBirthYearOffset-minBirthYearOffset)
	dob := time.Now().UTC().AddDate(-yearOffset, -getRandomInt(12), -getRandomInt(28))

	return User{
		ID:          uuid.New().String(),
		Name:        fmt.Sprintf("Athlete %d", index+1),
		Sex:         sex,
		DateOfBirth: dob.Format("2006-01-02"),
		Bodyweight:  weight,
	}
}

// generateSubmissions creates score submissions spread across the catalog for
// every seeded user.
func generateSubmissions(ctx context.Context, config *Config, users []User, stats *Stats) ([]Submission, error) {
	activities := catalog.All()
	total := len(users) * config.SubmissionsPer
	logger.Get().Info(ctx, "generating submissions",
		logger.Int("total", total),
		logger.Int("perUser", config.SubmissionsPer),
	)

	subs := make([]Submission, 0, total)
	for _, u := range users {
		for i := 0; i < config.SubmissionsPer; i++ {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during submission generation: %w", ctx.Err())
			default:
			}
			activity := activities[getRandomInt(len(activities))]
			subs = append(subs, generateSingleSubmission(u.ID, activity))
		}
	}

	stats.SubmissionsGenerated = len(subs)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(subs)))
	return subs, nil
}

// generateSingleSubmission creates one plausible submission for the activity.
func generateSingleSubmission(userID string, activity catalog.Activity) Submission {
	sub := Submission{
		SubmissionID: uuid.New().String(),
		UserID:       userID,
		ActivityID:   activity.ID,
	}

	switch activity.ID {
	case catalog.Squat:
		sub.RawValue = squatMin + getRandomFloat()*squatRange
	case catalog.Bench:
		sub.RawValue = benchMin + getRandomFloat()*benchRange
	case catalog.Deadlift:
		sub.RawValue = deadliftMin + getRandomFloat()*deadliftRange
	case catalog.Row500, catalog.Ski500:
		sub.RawValue = sprintTimeMin + getRandomFloat()*sprintRange
	case catalog.Row2000:
		sub.RawValue = row2kMin + getRandomFloat()*row2kRange
	case catalog.Bike500:
		sub.RawValue = bikeTimeMin + getRandomFloat()*bikeRange
	case catalog.Row4Min:
		sub.RawValue = distanceMin + getRandomFloat()*distanceRange
	default:
		sub.RawValue = 1 + getRandomFloat()*100
	}

	if activity.SupportsReps {
		sub.Reps = 1 + getRandomInt(maxReps)
	}
	return sub
}
