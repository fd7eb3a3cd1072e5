// Package worker defines the asynchronous scoring pipeline: workers drain the
// submission queue, resolve the submitter's profile, score the record, and
// append it to the repository.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/laurencestokes/challenger-events-sub000/internal/adapters/mq/queue"
	"github.com/laurencestokes/challenger-events-sub000/internal/adapters/repository"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
	"github.com/laurencestokes/challenger-events-sub000/internal/domain/scoring"
	"github.com/laurencestokes/challenger-events-sub000/pkg/logger"
	"github.com/laurencestokes/challenger-events-sub000/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Submission aliases the queue payload.
type Submission = queue.Submission

// Scorer turns a raw submission plus profile into a scored record.
// Implemented by the scoring engine.
type Scorer interface {
	ScoreRecord(ctx context.Context, rec model.ScoreRecord, profile model.UserProfile) (model.ScoredRecord, error)
}

// ProfileSource resolves the submitter's profile.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (model.UserProfile, error)
}

// Appender persists scored records.
type Appender interface {
	AddRecord(ctx context.Context, rec model.ScoredRecord) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes submissions until stopped.
type Worker struct {
	queue    Queue
	scorer   Scorer
	profiles ProfileSource
	appender Appender
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker with the given collaborators.
func NewWorker(q Queue, scorer Scorer, profiles ProfileSource, appender Appender, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		scorer:   scorer,
		profiles: profiles,
		appender: appender,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run drains the queue until ctx is cancelled or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.process(ctx, sub); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight submission.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process scores one submission and appends it to the repository.
//
// An incomplete or missing profile makes the submission unscoreable: it is
// counted and dropped, never retried. Provider failures never surface here;
// the engine already degraded them.
func (w *Worker) process(ctx context.Context, sub Submission) error {
	profile, err := w.profiles.Profile(ctx, sub.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.RecordUnscoreableRecord()
			w.logger.Warn(ctx, "submission for unknown user dropped",
				logger.String("submissionID", sub.ID),
				logger.String("userID", sub.UserID),
			)
			return nil
		}
		metrics.RecordWorkerError()
		return fmt.Errorf("profile lookup failed for %s: %w", sub.UserID, err)
	}

	scored, err := w.scorer.ScoreRecord(ctx, sub, profile)
	if err != nil {
		if errors.Is(err, scoring.ErrProfileIncomplete) {
			metrics.RecordUnscoreableRecord()
			w.logger.Warn(ctx, "unscoreable submission dropped",
				logger.String("submissionID", sub.ID),
				logger.String("userID", sub.UserID),
			)
			return nil
		}
		metrics.RecordWorkerError()
		return fmt.Errorf("scoring failed for submission %s: %w", sub.ID, err)
	}

	if err := w.appender.AddRecord(ctx, scored); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("append failed for submission %s: %w", sub.ID, err)
	}

	metrics.RecordSubmissionProcessed()
	w.logger.Debug(ctx, "submission scored",
		logger.String("submissionID", sub.ID),
		logger.String("activity", sub.ActivityID),
		logger.Float64("score", scored.Score),
		logger.Bool("degraded", scored.Degraded),
	)
	return nil
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue

	logger logger.Logger
}

// NewPool creates workerCount workers; a non-positive count defaults to a
// multiple of the CPU count.
func NewPool(workerCount int, q Queue, scorer Scorer, profiles ProfileSource, appender Appender) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, scorer, profiles, appender, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop waits for each worker to finish its in-flight submission, bounded by
// ctx. It does not close the queue; callers that want the workers to exit
// must close it first, or use Shutdown.
func (p *Pool) Stop(ctx context.Context) {
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
}

// Shutdown closes the queue and stops the pool within a bounded window.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	p.Stop(shutdownCtx)
	return nil
}
