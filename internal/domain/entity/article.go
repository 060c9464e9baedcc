// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, KeywordCandidate and
// Setting, along with their validation rules and domain-specific errors.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the lifecycle state of an Article.
// Transitions are monotonic except for StatusFailed, which is reachable
// from any in-flight state.
type ArticleStatus string

const (
	// StatusDraft is the initial state of a newly created article.
	StatusDraft ArticleStatus = "draft"

	// StatusKeywordAnalysis means the keyword enrichment job is running.
	StatusKeywordAnalysis ArticleStatus = "keyword_analysis"

	// StatusKeywordSelection means enrichment finished and the article is
	// waiting for the user to pick a keyword subset.
	StatusKeywordSelection ArticleStatus = "keyword_selection"

	// StatusProcessing means the content generation job is running.
	StatusProcessing ArticleStatus = "processing"

	// StatusCompleted means the article content has been generated.
	StatusCompleted ArticleStatus = "completed"

	// StatusPublished means the article was pushed to an external CMS.
	// Publishing does not erase completion: a published article keeps its content.
	StatusPublished ArticleStatus = "published"

	// StatusFailed is the terminal failure state, reachable from
	// keyword_analysis and processing.
	StatusFailed ArticleStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusKeywordAnalysis, StatusKeywordSelection,
		StatusProcessing, StatusCompleted, StatusPublished, StatusFailed:
		return true
	}
	return false
}

// InFlight reports whether a background job may currently be running for
// an article in this state.
func (s ArticleStatus) InFlight() bool {
	return s == StatusKeywordAnalysis || s == StatusProcessing
}

// statusPredecessors maps each target state to the set of states an article
// is allowed to be in immediately before entering it. Conditional writes in
// the persistence layer use this table to close check-then-write races.
var statusPredecessors = map[ArticleStatus][]ArticleStatus{
	// Analysis can be started from draft, restarted after a failure, or
	// re-run on a finished article. It must not be started while an
	// analysis is in flight or while the user is still selecting.
	StatusKeywordAnalysis: {StatusDraft, StatusProcessing, StatusCompleted, StatusPublished, StatusFailed},

	StatusKeywordSelection: {StatusKeywordAnalysis},
	StatusProcessing:       {StatusKeywordSelection},
	StatusCompleted:        {StatusProcessing},
	StatusPublished:        {StatusCompleted, StatusPublished},
	StatusFailed:           {StatusKeywordAnalysis, StatusProcessing},
}

// AllowedPredecessors returns the states from which target may be entered.
// The returned slice must not be mutated.
func AllowedPredecessors(target ArticleStatus) []ArticleStatus {
	return statusPredecessors[target]
}

// CanTransition reports whether an article in state from may move to state to.
func CanTransition(from, to ArticleStatus) bool {
	for _, p := range statusPredecessors[to] {
		if p == from {
			return true
		}
	}
	return false
}

// SerpStructure holds the competitor-page analysis derived from search
// results for the seed keyword. It is stored alongside the article and used
// to steer content generation.
type SerpStructure struct {
	HeadingPatterns map[string]int `json:"heading_patterns"`
	FAQItems        []string       `json:"faq_items"`
	TotalResults    int            `json:"total_results"`
	AvgTitleLength  float64        `json:"avg_title_length"`
}

// MaxImportantKeywords caps the must-include keywords a user can attach to
// an article request.
const MaxImportantKeywords = 3

// Article represents one SEO article request moving through the generation
// pipeline. It is owned exclusively by its user and mutated only through
// orchestrator operations.
type Article struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Keyword     string
	Target      string
	ArticleType string
	Status      ArticleStatus

	// ImportantKeywords are up to three user-supplied keywords the
	// expansion and the generated content must work in alongside the seed.
	ImportantKeywords []string

	Title        string
	Content      string
	ErrorMessage string

	// AnalyzedKeywords is the full scored candidate set from the most
	// recent enrichment run, ordered by descending total score.
	AnalyzedKeywords []KeywordCandidate

	// SelectedKeywords is the subset of analyzed keyword strings the user
	// chose for generation.
	SelectedKeywords []string

	MetaTitle       string
	MetaDescription string
	Subtopics       []string
	SerpStructure   *SerpStructure

	// ExternalArticleID is the identifier assigned by the CMS on publish.
	ExternalArticleID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the required creation fields.
func (a *Article) Validate() error {
	if a.UserID == uuid.Nil {
		return &ValidationError{Field: "userID", Message: "is required"}
	}
	if a.Keyword == "" {
		return &ValidationError{Field: "keyword", Message: "is required"}
	}
	if a.Target == "" {
		return &ValidationError{Field: "target", Message: "is required"}
	}
	if a.ArticleType == "" {
		return &ValidationError{Field: "articleType", Message: "is required"}
	}
	if len(a.ImportantKeywords) > MaxImportantKeywords {
		return &ValidationError{Field: "importantKeywords", Message: "at most 3 allowed"}
	}
	return nil
}
