package entity

import (
	"time"

	"github.com/google/uuid"
)

// History actions recorded on article mutations. Each orchestrator operation
// appends exactly one entry describing what changed.
const (
	ActionCreated          = "created"
	ActionUpdated          = "updated"
	ActionDeleted          = "deleted"
	ActionAnalysisStarted  = "keyword_analysis_started"
	ActionAnalysisDone     = "keyword_analysis_completed"
	ActionAnalysisFailed   = "keyword_analysis_failed"
	ActionKeywordsSelected = "keywords_selected"
	ActionGenerationDone   = "generation_completed"
	ActionGenerationFailed = "generation_failed"
	ActionPublished        = "published"
)

// ArticleHistory is an append-only audit record of one article mutation.
// Detail holds human-readable context; failure entries carry the truncated
// error message so the failure cause survives later status changes.
type ArticleHistory struct {
	ID        uuid.UUID
	ArticleID uuid.UUID
	UserID    uuid.UUID
	Action    string
	Status    ArticleStatus
	Detail    string
	CreatedAt time.Time
}
