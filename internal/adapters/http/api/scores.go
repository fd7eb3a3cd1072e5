package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laurencestokes/challenger-events-sub000/internal/adapters/repository"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/scoring"
	"github.com/laurencestokes/challenger-events-sub000/pkg/metrics"
)

// ScoresHandler handles score submission and verification requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// scoreRequest mirrors the submission payload for POST /scores. TIME
// activities may submit Time ("mm:ss.f" or seconds) instead of RawValue.
// SubmittedAt accepts any timestamp shape ParseTimestamp understands.
type scoreRequest struct {
	SubmissionID string  `json:"submission_id"`
	UserID       string  `json:"user_id"`
	ActivityID   string  `json:"activity_id"`
	RawValue     float64 `json:"raw_value"`
	Time         string  `json:"time,omitempty"`
	Reps         int     `json:"reps,omitempty"`
	EventID      string  `json:"event_id,omitempty"`
	SubmittedAt  any     `json:"submitted_at,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// toRecord validates the request and builds the raw record. Malformed input
// is rejected here; the aggregation engine never sees it.
func (req scoreRequest) toRecord() (model.ScoreRecord, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return model.ScoreRecord{}, errors.New("missing user_id")
	}
	if strings.TrimSpace(req.ActivityID) == "" {
		return model.ScoreRecord{}, errors.New("missing activity_id")
	}
	activity, ok := catalog.Lookup(req.ActivityID)
	if !ok {
		return model.ScoreRecord{}, fmt.Errorf("unknown activity_id %q", req.ActivityID)
	}

	raw := req.RawValue
	if activity.InputType == catalog.Time && req.Time != "" {
		parsed, err := scoring.ParseTime(req.Time)
		if err != nil {
			return model.ScoreRecord{}, err
		}
		raw = parsed
	}
	if raw <= 0 {
		return model.ScoreRecord{}, errors.New("raw_value must be positive")
	}

	reps := req.Reps
	if activity.SupportsReps {
		if reps == 0 {
			reps = activity.DefaultReps
		}
		if reps < activity.MinReps || reps > activity.MaxReps {
			return model.ScoreRecord{}, fmt.Errorf("reps must be between %d and %d", activity.MinReps, activity.MaxReps)
		}
	} else if reps != 0 {
		return model.ScoreRecord{}, fmt.Errorf("activity %q does not support reps", activity.ID)
	}

	submittedAt := time.Now()
	if req.SubmittedAt != nil {
		parsed, err := repository.ParseTimestamp(req.SubmittedAt)
		if err != nil {
			return model.ScoreRecord{}, err
		}
		submittedAt = parsed
	}

	id := strings.TrimSpace(req.SubmissionID)
	if id == "" {
		id = uuid.NewString()
	}

	return model.ScoreRecord{
		ID:          id,
		UserID:      req.UserID,
		ActivityID:  req.ActivityID,
		RawValue:    raw,
		Reps:        reps,
		EventID:     req.EventID,
		SubmittedAt: submittedAt,
		Notes:       req.Notes,
	}, nil
}

// HandlePostScore handles POST /scores requests.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordSubmissionRejected()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := req.toRecord()
	if err != nil {
		metrics.RecordSubmissionRejected()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check: mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), rec.ID) {
		metrics.RecordSubmissionDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SubmissionID: rec.ID, Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), rec); !ok {
		// Roll back the seen mark so the client can retry.
		h.deps.Unrecord(r.Context(), rec.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", SubmissionID: rec.ID})
}

// verifyRequest is the body for PATCH /scores/{id}/verify.
type verifyRequest struct {
	Verified bool `json:"verified"`
}

// HandleVerify handles PATCH /scores/{id}/verify requests, the one permitted
// mutation of a stored record.
func (h *ScoresHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	const op = "api.verify_score"
	if r.Method != http.MethodPatch {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/scores/")
	recordID, found := strings.CutSuffix(path, "/verify")
	if !found || recordID == "" || strings.Contains(recordID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	rec, err := h.deps.SetVerified(r.Context(), recordID, req.Verified)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record_id": rec.ID,
		"verified":  rec.Verified,
	})
}
