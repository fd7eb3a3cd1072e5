package repository

import (
	"fmt"
	"time"
)

// DocTimestamp mirrors the document-database timestamp shape some upstream
// payloads still carry.
type DocTimestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// ParseTimestamp collapses the timestamp representations seen at the storage
// boundary into a time.Time. Accepted inputs: time.Time, *time.Time, RFC3339
// strings, integer or fractional epoch seconds, DocTimestamp, and a generic
// map carrying "seconds"/"nanos". Everything past this boundary works with
// real time.Time values only.
func ParseTimestamp(input any) (time.Time, error) {
	switch v := input.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil *time.Time", ErrBadTimestamp)
		}
		return *v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, v)
		}
		return t, nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		sec := int64(v)
		nsec := int64((v - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), nil
	case DocTimestamp:
		return time.Unix(v.Seconds, v.Nanos).UTC(), nil
	case map[string]any:
		sec, ok := asInt64(v["seconds"])
		if !ok {
			return time.Time{}, fmt.Errorf("%w: map without seconds", ErrBadTimestamp)
		}
		nanos, _ := asInt64(v["nanos"])
		return time.Unix(sec, nanos).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %T", ErrBadTimestamp, input)
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
