package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrUnknownActivity means the activity ID is not in the closed catalog.
	// This is a programming error, not a data condition.
	ErrUnknownActivity = errors.New("unknown activity")

	// ErrProfileIncomplete means the profile is missing sex, date of birth,
	// or bodyweight. The record is unscoreable, not defaulted.
	ErrProfileIncomplete = errors.New("profile incomplete")

	// ErrInvalidTime means a time string could not be parsed.
	ErrInvalidTime = errors.New("invalid time value")
)
