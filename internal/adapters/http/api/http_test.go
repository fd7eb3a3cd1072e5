package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/laurencestokes/challenger-events-sub000/internal/adapters/repository"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/achievement"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/aggregate"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

// stubDeps implements Dependencies with canned responses and call recording.
type stubDeps struct {
	seen       map[string]bool
	unrecorded []string
	enqueued   []model.ScoreRecord
	enqueueOK  bool

	profiles    []model.UserProfile
	events      []model.Event
	teams       []model.Team
	memberships []model.TeamMembership

	verified    map[string]model.ScoredRecord
	entries     []aggregate.Entry
	eventBoard  EventLeaderboard
	eventErr    error
	rankEntry   aggregate.Entry
	rankErr     error
	achieveErrs error
}

func newStubDeps() *stubDeps {
	return &stubDeps{
		seen:      make(map[string]bool),
		enqueueOK: true,
		verified:  make(map[string]model.ScoredRecord),
	}
}

func (s *stubDeps) SeenAndRecord(_ context.Context, id string) bool {
	if s.seen[id] {
		return true
	}
	s.seen[id] = true
	return false
}

func (s *stubDeps) Unrecord(_ context.Context, id string) {
	delete(s.seen, id)
	s.unrecorded = append(s.unrecorded, id)
}

func (s *stubDeps) Size() int64 { return int64(len(s.seen)) }

func (s *stubDeps) Enqueue(_ context.Context, sub model.ScoreRecord) bool {
	if !s.enqueueOK {
		return false
	}
	s.enqueued = append(s.enqueued, sub)
	return true
}

func (s *stubDeps) SetVerified(_ context.Context, recordID string, verified bool) (model.ScoredRecord, error) {
	rec, ok := s.verified[recordID]
	if !ok {
		return model.ScoredRecord{}, fmt.Errorf("%w: %s", repository.ErrRecordNotFound, recordID)
	}
	rec.Verified = verified
	s.verified[recordID] = rec
	return rec, nil
}

func (s *stubDeps) PutProfile(_ context.Context, p model.UserProfile) error {
	s.profiles = append(s.profiles, p)
	return nil
}

func (s *stubDeps) PutEvent(_ context.Context, e model.Event) error {
	s.events = append(s.events, e)
	return nil
}

func (s *stubDeps) PutTeam(_ context.Context, t model.Team) error {
	s.teams = append(s.teams, t)
	return nil
}

func (s *stubDeps) PutMembership(_ context.Context, m model.TeamMembership) error {
	s.memberships = append(s.memberships, m)
	return nil
}

func (s *stubDeps) Leaderboard(_ context.Context, limit int, _ string, _ bool) ([]aggregate.Entry, error) {
	if limit < len(s.entries) {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

func (s *stubDeps) EventLeaderboard(_ context.Context, _ string) (EventLeaderboard, error) {
	return s.eventBoard, s.eventErr
}

func (s *stubDeps) Rank(_ context.Context, _ string) (aggregate.Entry, error) {
	return s.rankEntry, s.rankErr
}

func (s *stubDeps) Achievements(_ context.Context, _ string) ([]achievement.Result, error) {
	return nil, s.achieveErrs
}

// stubStats implements StatsProvider.
type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *stubDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, stubStats{}, 100).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestPostScore(t *testing.T) {
	Convey("Given the scores endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestMux(deps)

		Convey("When a valid submission is posted", func() {
			w := doJSON(mux, http.MethodPost, "/scores",
				`{"submission_id":"s1","user_id":"u1","activity_id":"squat","raw_value":140,"reps":3}`)

			Convey("Then it is accepted and enqueued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var ack ackResponse
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.SubmissionID, ShouldEqual, "s1")
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].Reps, ShouldEqual, 3)
			})
		})

		Convey("When the same submission is posted twice", func() {
			body := `{"submission_id":"s1","user_id":"u1","activity_id":"squat","raw_value":140}`
			doJSON(mux, http.MethodPost, "/scores", body)
			w := doJSON(mux, http.MethodPost, "/scores", body)

			Convey("Then the second is acknowledged as a duplicate, not enqueued", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var ack ackResponse
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Duplicate, ShouldBeTrue)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When no submission ID is supplied", func() {
			w := doJSON(mux, http.MethodPost, "/scores",
				`{"user_id":"u1","activity_id":"squat","raw_value":140}`)

			Convey("Then one is generated", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var ack ackResponse
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.SubmissionID, ShouldNotBeEmpty)
			})
		})

		Convey("When a TIME activity submits a formatted time", func() {
			w := doJSON(mux, http.MethodPost, "/scores",
				`{"submission_id":"s1","user_id":"u1","activity_id":"row500","time":"1:26.3"}`)

			Convey("Then the parsed seconds become the raw value", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued[0].RawValue, ShouldAlmostEqual, 86.3, 0.001)
			})
		})

		Convey("When the queue refuses the submission", func() {
			deps.enqueueOK = false
			w := doJSON(mux, http.MethodPost, "/scores",
				`{"submission_id":"s1","user_id":"u1","activity_id":"squat","raw_value":140}`)

			Convey("Then the client gets backpressure and the seen mark rolls back", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.unrecorded, ShouldResemble, []string{"s1"})
				So(deps.seen["s1"], ShouldBeFalse)
			})
		})

		Convey("When malformed submissions are posted", func() {
			cases := map[string]string{
				"no user":          `{"activity_id":"squat","raw_value":140}`,
				"no activity":      `{"user_id":"u1","raw_value":140}`,
				"unknown activity": `{"user_id":"u1","activity_id":"curl","raw_value":50}`,
				"zero raw value":   `{"user_id":"u1","activity_id":"squat"}`,
				"reps out of band": `{"user_id":"u1","activity_id":"squat","raw_value":140,"reps":11}`,
				"reps on a row":    `{"user_id":"u1","activity_id":"row500","raw_value":90,"reps":3}`,
				"bad time":         `{"user_id":"u1","activity_id":"row500","time":"1:99"}`,
				"not json":         `{{{`,
			}
			for name, body := range cases {
				w := doJSON(mux, http.MethodPost, "/scores", body)

				Convey("Then the "+name+" case is rejected with 400", func() {
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(deps.enqueued, ShouldBeEmpty)
				})
			}
		})

		Convey("When a non-POST method is used", func() {
			w := doJSON(mux, http.MethodGet, "/scores", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestVerifyScore(t *testing.T) {
	Convey("Given a stored record", t, func() {
		deps := newStubDeps()
		deps.verified["r1"] = model.ScoredRecord{
			ScoreRecord: model.ScoreRecord{ID: "r1", UserID: "u1"},
			Score:       600,
		}
		mux := newTestMux(deps)

		Convey("When verification is flipped on", func() {
			w := doJSON(mux, http.MethodPatch, "/scores/r1/verify", `{"verified":true}`)

			Convey("Then the updated state is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["record_id"], ShouldEqual, "r1")
				So(resp["verified"], ShouldEqual, true)
			})
		})

		Convey("When the record does not exist", func() {
			w := doJSON(mux, http.MethodPatch, "/scores/missing/verify", `{"verified":true}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			w := doJSON(mux, http.MethodPatch, "/scores/r1/something", `{"verified":true}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is wrong", func() {
			w := doJSON(mux, http.MethodPost, "/scores/r1/verify", `{"verified":true}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGetLeaderboard(t *testing.T) {
	Convey("Given a leaderboard with entries", t, func() {
		deps := newStubDeps()
		deps.entries = []aggregate.Entry{
			{UserID: "u1", TotalScore: 500, Rank: 1},
			{UserID: "u2", TotalScore: 400, Rank: 2},
		}
		mux := newTestMux(deps)

		Convey("When queried with a limit", func() {
			w := doJSON(mux, http.MethodGet, "/leaderboard?limit=1", "")

			Convey("Then the page is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []aggregate.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].UserID, ShouldEqual, "u1")
			})
		})

		Convey("When the limit is missing or invalid", func() {
			So(doJSON(mux, http.MethodGet, "/leaderboard", "").Code, ShouldEqual, http.StatusBadRequest)
			So(doJSON(mux, http.MethodGet, "/leaderboard?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(doJSON(mux, http.MethodGet, "/leaderboard?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			w := doJSON(mux, http.MethodGet, "/leaderboard?limit=101", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var resp errorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, "limit_exceeded")
		})

		Convey("When an unknown activity is requested", func() {
			w := doJSON(mux, http.MethodGet, "/leaderboard?limit=10&activity=curl", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the verified flag is not a boolean", func() {
			w := doJSON(mux, http.MethodGet, "/leaderboard?limit=10&verified=maybe", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetRank(t *testing.T) {
	Convey("Given the rank endpoint", t, func() {
		deps := newStubDeps()
		deps.rankEntry = aggregate.Entry{UserID: "u1", TotalScore: 450, Rank: 3}
		mux := newTestMux(deps)

		Convey("When a known user is requested", func() {
			w := doJSON(mux, http.MethodGet, "/rank/u1", "")

			Convey("Then the entry is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entry aggregate.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entry), ShouldBeNil)
				So(entry.Rank, ShouldEqual, 3)
			})
		})

		Convey("When the user is unknown", func() {
			deps.rankErr = fmt.Errorf("%w: ghost", repository.ErrUserNotFound)
			w := doJSON(mux, http.MethodGet, "/rank/ghost", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGetEventLeaderboard(t *testing.T) {
	Convey("Given the event leaderboard endpoint", t, func() {
		deps := newStubDeps()
		deps.eventBoard = EventLeaderboard{
			EventID:     "e1",
			Code:        "SPRING",
			IsTeamEvent: true,
			Individuals: []aggregate.Entry{{UserID: "u1", Rank: 1}},
			Teams:       []aggregate.TeamEntry{{TeamID: "t1", Rank: 1}},
		}
		mux := newTestMux(deps)

		Convey("When a known code is requested", func() {
			w := doJSON(mux, http.MethodGet, "/events/SPRING/leaderboard", "")

			Convey("Then both views are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var board EventLeaderboard
				So(json.Unmarshal(w.Body.Bytes(), &board), ShouldBeNil)
				So(board.Individuals, ShouldHaveLength, 1)
				So(board.Teams, ShouldHaveLength, 1)
			})
		})

		Convey("When the code is unknown", func() {
			deps.eventErr = fmt.Errorf("%w: code NOPE", repository.ErrEventNotFound)
			w := doJSON(mux, http.MethodGet, "/events/NOPE/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPutUser(t *testing.T) {
	Convey("Given the users endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestMux(deps)

		Convey("When a complete profile is posted", func() {
			w := doJSON(mux, http.MethodPost, "/users",
				`{"id":"u1","name":"Alice","sex":"F","date_of_birth":"1992-04-10","bodyweight":63.5}`)

			Convey("Then it is stored and reported complete", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["id"], ShouldEqual, "u1")
				So(resp["complete"], ShouldEqual, true)
				So(deps.profiles, ShouldHaveLength, 1)
				So(deps.profiles[0].Sex, ShouldEqual, model.Female)
			})
		})

		Convey("When a partial profile is posted", func() {
			w := doJSON(mux, http.MethodPost, "/users", `{"name":"Bob"}`)

			Convey("Then it is stored with a generated ID but reported incomplete", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["id"], ShouldNotBeEmpty)
				So(resp["complete"], ShouldEqual, false)
			})
		})

		Convey("When the birth date is malformed", func() {
			w := doJSON(mux, http.MethodPost, "/users", `{"date_of_birth":"April 10th"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPutEvent(t *testing.T) {
	Convey("Given the events endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestMux(deps)

		Convey("When a team event with rosters is posted", func() {
			w := doJSON(mux, http.MethodPost, "/events", `{
				"id":"e1","code":"SPRING","is_team_event":true,
				"teams":[{"id":"t1","name":"Alpha","members":["u1","u2"],"captain":"u1"}]
			}`)

			Convey("Then the event, team, and memberships are stored", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.events, ShouldHaveLength, 1)
				So(deps.events[0].Status, ShouldEqual, model.EventActive)
				So(deps.events[0].TeamScoringMethod, ShouldEqual, model.TeamSum)
				So(deps.teams, ShouldHaveLength, 1)
				So(deps.memberships, ShouldHaveLength, 2)
				So(deps.memberships[0].Role, ShouldEqual, model.RoleCaptain)
				So(deps.memberships[1].Role, ShouldEqual, model.RoleMember)
			})
		})

		Convey("When the join code is missing", func() {
			w := doJSON(mux, http.MethodPost, "/events", `{"id":"e1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetAchievements(t *testing.T) {
	Convey("Given the achievements endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestMux(deps)

		Convey("When a user's achievements are requested", func() {
			w := doJSON(mux, http.MethodGet, "/users/u1/achievements", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the user is unknown", func() {
			deps.achieveErrs = fmt.Errorf("%w: ghost", repository.ErrUserNotFound)
			w := doJSON(mux, http.MethodGet, "/users/ghost/achievements", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			w := doJSON(mux, http.MethodGet, "/users/u1/trophies", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given the observability endpoints", t, func() {
		mux := newTestMux(newStubDeps())

		Convey("When stats are requested", func() {
			w := doJSON(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("When health is requested", func() {
			w := doJSON(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}
