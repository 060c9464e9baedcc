// Package jobs executes orchestrator steps outside the request cycle: a
// bounded in-process queue drained by a worker pool, plus a cron-driven
// reconciler that re-enqueues articles whose jobs were lost.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/infra/notifier"
	"seoforge/internal/observability/metrics"
)

var (
	// ErrQueueFull is returned when the job queue is at capacity. The
	// caller treats it as transient; the reconciler recovers the work.
	ErrQueueFull = errors.New("job queue full")
	// ErrUnknownJobKind is returned for kinds with no registered handler.
	ErrUnknownJobKind = errors.New("unknown job kind")
	// ErrNotRunning is returned when enqueueing before Start or after
	// Stop.
	ErrNotRunning = errors.New("job runner not running")
)

// Handler executes one job kind for one article.
type Handler func(ctx context.Context, articleID uuid.UUID) error

// Job is one queued unit of work.
type Job struct {
	Kind      string
	ArticleID uuid.UUID
}

// RunnerConfig sizes the worker pool.
type RunnerConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns pool defaults. LLM-backed jobs run for
// minutes, so the timeout is generous.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:    4,
		QueueSize:  256,
		JobTimeout: 10 * time.Minute,
	}
}

// Runner is the in-process job queue. It satisfies the orchestrator's
// JobQueue interface.
//
// The queue is process-lifetime only: jobs die with the process. That is
// acceptable because every job's need is derivable from the article's
// in-flight status, which the reconciler scans.
type Runner struct {
	config   RunnerConfig
	log      *slog.Logger
	handlers map[string]Handler
	notify   notifier.Notifier

	mu      sync.Mutex
	queue   chan Job
	running bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewRunner creates a stopped Runner.
func NewRunner(config RunnerConfig, log *slog.Logger) *Runner {
	return &Runner{
		config:   config,
		log:      log,
		handlers: make(map[string]Handler),
		notify:   notifier.NewNoopNotifier(),
	}
}

// SetNotifier routes job failure events to n. Must be called before Start.
func (r *Runner) SetNotifier(n notifier.Notifier) {
	if n != nil {
		r.notify = n
	}
}

// Register binds a handler to a job kind. Must be called before Start.
func (r *Runner) Register(kind string, h Handler) {
	r.handlers[kind] = h
}

// Start launches the worker pool.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.queue = make(chan Job, r.config.QueueSize)
	r.running = true

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
	r.log.Info("job runner started",
		slog.Int("workers", r.config.Workers),
		slog.Int("queue_size", r.config.QueueSize))
}

// Stop drains the queue and in-flight jobs, then shuts the pool down.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	r.cancel()
	r.log.Info("job runner stopped")
}

// Enqueue adds a job to the queue without blocking.
func (r *Runner) Enqueue(kind string, articleID uuid.UUID) error {
	if _, ok := r.handlers[kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJobKind, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return ErrNotRunning
	}
	select {
	case r.queue <- Job{Kind: kind, ArticleID: articleID}:
		metrics.RecordJobEnqueued(kind)
		return nil
	default:
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, r.config.QueueSize)
	}
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for job := range r.queue {
		r.execute(ctx, job)
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	ctx, cancel := context.WithTimeout(ctx, r.config.JobTimeout)
	defer cancel()

	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()

	start := time.Now()
	err := r.runHandler(ctx, job)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordJobCompleted(job.Kind, "failure")
		r.log.Error("job failed",
			slog.String("kind", job.Kind),
			slog.String("article_id", job.ArticleID.String()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		r.reportFailure(job, err)
		return
	}
	metrics.RecordJobCompleted(job.Kind, "success")
	r.log.Info("job completed",
		slog.String("kind", job.Kind),
		slog.String("article_id", job.ArticleID.String()),
		slog.Duration("duration", duration))
}

// reportFailure sends the failure to the configured notifier without
// blocking the worker. Delivery is best effort; the notifier logs drops.
func (r *Runner) reportFailure(job Job, jobErr error) {
	ev := notifier.Event{
		ArticleID:  job.ArticleID,
		Kind:       job.Kind,
		Detail:     jobErr.Error(),
		OccurredAt: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = r.notify.NotifyFailure(ctx, ev)
	}()
}

// runHandler isolates handler panics so one bad job cannot kill a worker.
func (r *Runner) runHandler(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
			r.log.Error("job panic recovered",
				slog.String("kind", job.Kind),
				slog.String("article_id", job.ArticleID.String()),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	return r.handlers[job.Kind](ctx, job.ArticleID)
}
