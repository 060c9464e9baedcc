// Package notifier pushes article lifecycle events to operator channels.
// It defines the Notifier interface which allows different notification
// mechanisms (Discord, Slack, etc.) to be used interchangeably through
// dependency injection, plus a no-op implementation for when notifications
// are disabled.
//
// The job runner is the only producer today: it reports background failures
// so an operator hears about a broken provider before users do.
package notifier

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes one article lifecycle occurrence worth telling an
// operator about.
type Event struct {
	// ArticleID identifies the affected article.
	ArticleID uuid.UUID
	// Keyword is the article's seed keyword, for a readable message.
	Keyword string
	// Kind names what happened, e.g. "keyword_analysis" or "generation".
	Kind string
	// Detail carries the failure reason. Already truncated by the
	// orchestrator; notifiers truncate again to their channel's limits.
	Detail string
	// OccurredAt is when the event happened.
	OccurredAt time.Time
}

// Notifier delivers events to an external channel. Implementations handle
// rate limiting, retries, and error logging internally; a returned error
// means the event was dropped after all attempts.
type Notifier interface {
	NotifyFailure(ctx context.Context, ev Event) error
}
