package aggregate

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

func TestTeamLeaderboard(t *testing.T) {
	canonical := catalog.NewSet(catalog.DefaultExclusions)

	teams := []model.Team{
		{ID: "t1", Name: "Alpha"},
		{ID: "t2", Name: "Bravo"},
	}
	roster := map[string][]model.UserProfile{
		"t1": {{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}},
		"t2": {{ID: "u3", Name: "Carol"}, {ID: "u4", Name: "Dan"}},
	}
	bests := map[string]map[string]ActivityScore{
		"u1": {"squat": {ActivityID: "squat", Score: 600}},
		"u2": {"squat": {ActivityID: "squat", Score: 400}},
		"u3": {"squat": {ActivityID: "squat", Score: 700}},
		// u4 never squatted
	}

	Convey("Given two teams with member bests", t, func() {
		Convey("When scored with SUM", func() {
			board := TeamLeaderboard(teams, roster, bests, model.TeamSum, canonical, 0)

			Convey("Then each activity adds every member's best", func() {
				So(board, ShouldHaveLength, 2)
				So(board[0].TeamID, ShouldEqual, "t1")
				So(board[0].TotalScore, ShouldEqual, 1000)
				So(board[0].Rank, ShouldEqual, 1)
				So(board[1].TeamID, ShouldEqual, "t2")
				So(board[1].TotalScore, ShouldEqual, 700)
			})

			Convey("Then per-activity team ranks are stamped", func() {
				So(board[0].WorkoutScores["squat"].Rank, ShouldEqual, 1)
				So(board[1].WorkoutScores["squat"].Rank, ShouldEqual, 2)
			})
		})

		Convey("When scored with AVERAGE", func() {
			board := TeamLeaderboard(teams, roster, bests, model.TeamAverage, canonical, 0)

			Convey("Then the sum divides by roster size, absent members included", func() {
				// t1: (600+400)/2 = 500; t2: 700/2 = 350, the missing member
				// drags the mean down.
				So(board[0].TeamID, ShouldEqual, "t1")
				So(board[0].TotalScore, ShouldEqual, 500)
				So(board[1].TotalScore, ShouldEqual, 350)
			})
		})

		Convey("When scored with BEST", func() {
			board := TeamLeaderboard(teams, roster, bests, model.TeamBest, canonical, 0)

			Convey("Then the single highest member score counts", func() {
				So(board[0].TeamID, ShouldEqual, "t2")
				So(board[0].TotalScore, ShouldEqual, 700)
				So(board[1].TotalScore, ShouldEqual, 600)
			})
		})
	})
}

func TestTeamContributorDisplay(t *testing.T) {
	canonical := catalog.NewSet(catalog.DefaultExclusions)

	teams := []model.Team{{ID: "t1", Name: "Alpha"}}
	roster := map[string][]model.UserProfile{
		"t1": {
			{ID: "u1", Name: "Alice"},
			{ID: "u2", Name: "Bob"},
			{ID: "u3", Name: "Carol"},
			{ID: "u4", Name: "Dan"},
		},
	}
	bests := map[string]map[string]ActivityScore{
		"u1": {"bench": {ActivityID: "bench", Score: 300}},
		"u2": {"bench": {ActivityID: "bench", Score: 500}},
		"u3": {"bench": {ActivityID: "bench", Score: 400}},
		"u4": {"bench": {ActivityID: "bench", Score: 200}},
	}

	Convey("Given a team with more contributors than the display cap", t, func() {
		Convey("When the board is computed with a top-2 display", func() {
			board := TeamLeaderboard(teams, roster, bests, model.TeamSum, canonical, 2)
			as := board[0].WorkoutScores["bench"]

			Convey("Then contributors are truncated to the top scores", func() {
				So(as.Contributors, ShouldHaveLength, 2)
				So(as.Contributors[0].UserID, ShouldEqual, "u2")
				So(as.Contributors[1].UserID, ShouldEqual, "u3")
				So(as.MoreCount, ShouldEqual, 2)
			})

			Convey("Then truncation never changes the team score", func() {
				So(as.Score, ShouldEqual, 1400)
			})
		})
	})

	Convey("Given a team whose roster nobody scored", t, func() {
		board := TeamLeaderboard(
			[]model.Team{{ID: "t9", Name: "Empty"}},
			map[string][]model.UserProfile{"t9": {{ID: "u9"}}},
			nil, model.TeamSum, canonical, 3,
		)

		Convey("Then the team appears with a zero total and no activity rows", func() {
			So(board, ShouldHaveLength, 1)
			So(board[0].TotalScore, ShouldEqual, 0)
			So(board[0].WorkoutScores, ShouldBeEmpty)
		})
	})
}
