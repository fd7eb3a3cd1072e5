package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/laurencestokes/challenger-events-sub000/internal/config"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/catalog"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*10)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.TeamDisplayTopN, convey.ShouldEqual, 3)
			convey.So(cfg.NonCanonicalActivities, convey.ShouldResemble, catalog.DefaultExclusions)
		})
	})
}
