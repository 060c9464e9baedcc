// Package article provides HTTP handlers for the article lifecycle:
// creation, listing, updates, keyword analysis, keyword selection,
// publishing and the audit history.
package article

import (
	"errors"
	"net/http"
	"time"

	"seoforge/internal/domain/entity"
	"seoforge/internal/handler/http/pathutil"
	"seoforge/internal/handler/http/respond"
	artUC "seoforge/internal/usecase/article"
)

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID          string `json:"id" example:"3f1c9a1e-8d4f-4f8e-9b2a-0c6d5e4f3a2b"`
	Keyword     string `json:"keyword" example:"home espresso"`
	Target      string `json:"target" example:"beginners"`
	ArticleType string `json:"article_type" example:"guide"`
	Status      string `json:"status" example:"draft"`

	ImportantKeywords []string `json:"important_keywords,omitempty"`

	Title        string `json:"title,omitempty"`
	Content      string `json:"content,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	AnalyzedKeywords []entity.KeywordCandidate `json:"analyzed_keywords,omitempty"`
	SelectedKeywords []string                  `json:"selected_keywords,omitempty"`

	MetaTitle         string                `json:"meta_title,omitempty"`
	MetaDescription   string                `json:"meta_description,omitempty"`
	Subtopics         []string              `json:"subtopics,omitempty"`
	SerpStructure     *entity.SerpStructure `json:"serp_structure,omitempty"`
	ExternalArticleID string                `json:"external_article_id,omitempty"`

	CreatedAt time.Time `json:"created_at" example:"2026-08-30T12:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2026-08-30T12:00:00Z"`
}

func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:                a.ID.String(),
		Keyword:           a.Keyword,
		Target:            a.Target,
		ArticleType:       a.ArticleType,
		Status:            string(a.Status),
		ImportantKeywords: a.ImportantKeywords,
		Title:             a.Title,
		Content:           a.Content,
		ErrorMessage:      a.ErrorMessage,
		AnalyzedKeywords:  a.AnalyzedKeywords,
		SelectedKeywords:  a.SelectedKeywords,
		MetaTitle:         a.MetaTitle,
		MetaDescription:   a.MetaDescription,
		Subtopics:         a.Subtopics,
		SerpStructure:     a.SerpStructure,
		ExternalArticleID: a.ExternalArticleID,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// HistoryDTO represents one audit trail entry.
type HistoryDTO struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toHistoryDTO(h *entity.ArticleHistory) HistoryDTO {
	return HistoryDTO{
		ID:        h.ID.String(),
		Action:    h.Action,
		Status:    string(h.Status),
		Detail:    h.Detail,
		CreatedAt: h.CreatedAt,
	}
}

// statusForError maps use case errors onto HTTP status codes. A disallowed
// status transition is a client mistake about the article's current state,
// so it is reported as 400 like every other invalid request.
func statusForError(err error) int {
	var ve *entity.ValidationError
	switch {
	case errors.Is(err, artUC.ErrArticleNotFound):
		return http.StatusNotFound
	case errors.Is(err, artUC.ErrInvalidTransition),
		errors.Is(err, artUC.ErrNotReadyToPublish),
		errors.Is(err, pathutil.ErrInvalidID),
		errors.Is(err, artUC.ErrNoKeywordsSelected),
		errors.Is(err, artUC.ErrUnknownKeyword),
		errors.Is(err, artUC.ErrUnknownPublisher),
		errors.As(err, &ve):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status code. Mapped errors are domain
// sentinels with safe messages; everything else goes through the
// sanitizing path so internal detail never reaches the client.
func respondError(w http.ResponseWriter, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		respond.SafeError(w, code, err)
		return
	}
	respond.Error(w, code, err)
}
