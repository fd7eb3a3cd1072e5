package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
)

// epleyDivisor is the rep coefficient in estimated1RM = w * (1 + reps/30).
const epleyDivisor = 30.0

// Epley returns the estimated one-rep max for a lift of weight kg at the given
// rep count. A single rep is the weight itself, exactly.
func Epley(weight float64, reps int) float64 {
	if reps <= 1 {
		return weight
	}
	return weight * (1 + float64(reps)/epleyDivisor)
}

// NormalizeRawValue converts a submitted raw value into the value fed to the
// provider. Rep-supporting WEIGHT activities are collapsed to an estimated
// one-rep max; everything else passes through. Unknown activity IDs pass
// through untouched so display paths degrade instead of failing.
func NormalizeRawValue(activityID string, rawValue float64, reps int) float64 {
	a, ok := catalog.Lookup(activityID)
	if !ok {
		return rawValue
	}
	if a.InputType == catalog.Weight && a.SupportsReps {
		if reps <= 0 {
			reps = 1
		}
		return Epley(rawValue, reps)
	}
	return rawValue
}

// ParseTime parses either "mm:ss[.f]" or a plain seconds string into seconds.
// "1:26.3" -> 86.3, "95" -> 95.
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTime)
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		mins, err := strconv.Atoi(s[:i])
		if err != nil || mins < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		secs, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil || secs < 0 || secs >= 60 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		return float64(mins)*60 + secs, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return secs, nil
}

// FormatTime renders seconds as "m:ss.f" when at or above a minute, else
// "ss.f". The inverse of ParseTime up to one fractional digit. Rounding to
// tenths happens before the minutes split so a value just under a minute
// boundary carries into the minutes instead of producing a 60.0 component.
func FormatTime(seconds float64) string {
	tenths := math.Round(seconds * 10)
	if tenths >= 600 {
		mins := int(tenths) / 600
		rem := (tenths - float64(mins)*600) / 10
		return fmt.Sprintf("%d:%04.1f", mins, rem)
	}
	return fmt.Sprintf("%.1f", tenths/10)
}

// FormatRawValue renders a raw value for display according to the activity's
// input type. Unknown activity IDs fall back to the bare number; display
// degradation is not a hard failure.
func FormatRawValue(activityID string, rawValue float64, reps int) string {
	a, ok := catalog.Lookup(activityID)
	if !ok {
		return strconv.FormatFloat(rawValue, 'f', -1, 64)
	}
	switch a.InputType {
	case catalog.Time:
		if rawValue >= 60 {
			return FormatTime(rawValue) + " (mm:ss.ms)"
		}
		return FormatTime(rawValue) + " (ss.ms)"
	case catalog.Distance:
		return fmt.Sprintf("%d %s", int(math.Round(rawValue)), a.Unit)
	default:
		v := strconv.FormatFloat(rawValue, 'f', -1, 64)
		if a.SupportsReps && reps > 1 {
			return fmt.Sprintf("%s %s x %d", v, a.Unit, reps)
		}
		return v + " " + a.Unit
	}
}
