package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
	"seoforge/internal/repository"
	"seoforge/internal/usecase/article"
)

// ReconcilerConfig controls the periodic sweep.
type ReconcilerConfig struct {
	// Schedule is a cron spec; "@every ..." forms work too.
	Schedule string
	// StaleAfter is how long an article may sit in an in-flight status
	// before its job is considered lost.
	StaleAfter time.Duration
	// Timeout bounds one sweep.
	Timeout time.Duration
}

// DefaultReconcilerConfig sweeps every minute for articles stuck in flight
// longer than ten minutes, matching the runner's job timeout.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		Schedule:   "@every 1m",
		StaleAfter: 10 * time.Minute,
		Timeout:    30 * time.Second,
	}
}

// Reconciler re-enqueues jobs for articles stuck in an in-flight status.
// The in-process queue is fire-and-forget, so a crash, a full queue or a
// dropped enqueue leaves the article's status as the only record that work
// is owed; the sweep turns that record back into a job.
type Reconciler struct {
	Articles repository.ArticleRepository
	Queue    article.JobQueue
	Config   ReconcilerConfig
	Log      *slog.Logger

	// Housekeeping hooks run after each sweep (rate limiter eviction,
	// gauge refreshes).
	Housekeeping []func()

	cron *cron.Cron
}

// Start schedules the sweep. Returns an error for an invalid schedule.
func (r *Reconciler) Start() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.Config.Schedule, r.sweep); err != nil {
		return fmt.Errorf("schedule reconciler: %w", err)
	}
	r.cron.Start()
	r.Log.Info("reconciler started",
		slog.String("schedule", r.Config.Schedule),
		slog.Duration("stale_after", r.Config.StaleAfter))
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

func (r *Reconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), r.Config.Timeout)
	defer cancel()

	requeued, err := r.Sweep(ctx)
	if err != nil {
		r.Log.Error("reconciler sweep failed", slog.String("error", err.Error()))
	} else if requeued > 0 {
		r.Log.Info("reconciler requeued stale jobs", slog.Int("count", requeued))
	}

	for _, hook := range r.Housekeeping {
		hook()
	}
}

// Sweep finds stale in-flight articles and re-enqueues their jobs once.
// Handlers are idempotent (completion is a guarded write), so requeueing
// an article whose job is merely slow is harmless.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	stale, err := r.Articles.ListStale(ctx, int(r.Config.StaleAfter.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("list stale articles: %w", err)
	}

	var requeued int
	for _, art := range stale {
		kind, ok := jobKindFor(art.Status)
		if !ok {
			continue
		}
		if err := r.Queue.Enqueue(kind, art.ID); err != nil {
			r.Log.Warn("reconciler enqueue failed",
				slog.String("article_id", art.ID.String()),
				slog.String("kind", kind),
				slog.String("error", err.Error()))
			continue
		}
		requeued++
	}
	metrics.RecordReconciled(requeued)
	return requeued, nil
}

func jobKindFor(status entity.ArticleStatus) (string, bool) {
	switch status {
	case entity.StatusKeywordAnalysis:
		return article.JobKeywordAnalysis, true
	case entity.StatusProcessing:
		return article.JobGeneration, true
	default:
		return "", false
	}
}
