package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestSubmissionMetrics(t *testing.T) {
	Convey("Given submission metrics recording", t, func() {
		Convey("Then processed, duplicate, and rejected counters record", func() {
			So(func() {
				RecordSubmissionProcessed()
				RecordSubmissionDuplicate()
				RecordSubmissionRejected()
			}, ShouldNotPanic)
		})

		Convey("Then scoring metrics record", func() {
			So(func() {
				RecordScoringLatency(12.5)
				RecordScoringDegraded()
				RecordScoringError()
				RecordUnscoreableRecord()
			}, ShouldNotPanic)
		})
	})
}

func TestPipelineMetrics(t *testing.T) {
	Convey("Given pipeline metrics recording", t, func() {
		Convey("Then queue gauges update", func() {
			So(func() {
				UpdateQueueSize(1000)
				UpdateQueueCapacity(100000)
				UpdateQueueUtilization(0.01)
				RecordQueueProcessingLatency(3)
				RecordQueueEnqueueError()
			}, ShouldNotPanic)
		})

		Convey("Then worker gauges update", func() {
			So(func() {
				UpdateWorkerCount(8)
				UpdateWorkerActiveCount(4)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("Then repository metrics record", func() {
			So(func() {
				UpdateRepositoryRecordsTotal(5000)
				UpdateRepositoryUsersTotal(400)
				UpdateRepositoryShardCount(8)
				RecordRepositoryUpdateLatency(1)
				RecordRepositoryQueryLatency(2)
			}, ShouldNotPanic)
		})

		Convey("Then leaderboard metrics record", func() {
			So(func() {
				RecordLeaderboardComputation(25)
				RecordLeaderboardError()
			}, ShouldNotPanic)
		})
	})
}

func TestHTTPAndSystemMetrics(t *testing.T) {
	Convey("Given HTTP and system metrics recording", t, func() {
		Convey("Then HTTP metrics record", func() {
			So(func() {
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", "200", 4.2)
			}, ShouldNotPanic)
		})

		Convey("Then system gauges update", func() {
			So(func() {
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(42)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistryGathering(t *testing.T) {
	Convey("Given the service registry", t, func() {
		registry := GetRegistry()

		Convey("When metrics have been recorded", func() {
			RecordSubmissionProcessed()
			families, err := registry.Gather()

			Convey("Then the exposition contains metric families", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
