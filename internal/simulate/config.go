// Package simulate seeds a running service with synthetic athletes and score
// submissions, then cross-checks the resulting leaderboard.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL        string        // Base URL of the service
	NumUsers       int           // Number of athlete profiles to seed
	SubmissionsPer int           // Score submissions per athlete
	TopN           int           // Number of top entries to fetch
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	LogFile        string        // Log file for run output
	Verbose        bool          // Enable verbose logging
}

// User is the profile seeding payload.
type User struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Sex         string  `json:"sex"`
	DateOfBirth string  `json:"date_of_birth"`
	Bodyweight  float64 `json:"bodyweight"`
}

// Submission is the score submission payload.
type Submission struct {
	SubmissionID string  `json:"submission_id"`
	UserID       string  `json:"user_id"`
	ActivityID   string  `json:"activity_id"`
	RawValue     float64 `json:"raw_value"`
	Reps         int     `json:"reps,omitempty"`
}

// ActivityScore mirrors one per-activity cell of a leaderboard entry.
type ActivityScore struct {
	ActivityID string  `json:"activity_id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// Entry mirrors one leaderboard row.
type Entry struct {
	UserID        string                   `json:"user_id"`
	Name          string                   `json:"name"`
	TotalScore    float64                  `json:"total_score"`
	WorkoutScores map[string]ActivityScore `json:"workout_scores"`
	Rank          int                      `json:"rank"`
}

// AckResponse mirrors the response from score submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	UsersSeeded          int
	SubmissionsGenerated int
	SubmissionsSent      int
	SubmissionsAccepted  int
	SubmissionsDuplicate int
	SubmissionsFailed    int
	RankingsRetrieved    int
	LeaderboardEntries   int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
