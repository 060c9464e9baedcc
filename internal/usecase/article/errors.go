// Package article provides the article lifecycle use cases.
// It orchestrates the status machine from draft through keyword analysis,
// selection, generation and publishing, recording every mutation in the
// article history.
package article

import "errors"

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not
	// found or belongs to another user.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidTransition indicates that the requested operation is not
	// valid for the article's current status, or that a concurrent
	// operation won the transition first.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoKeywordsSelected indicates that a selection request contained
	// no keywords.
	ErrNoKeywordsSelected = errors.New("no keywords selected")

	// ErrUnknownKeyword indicates that a selected keyword is not part of
	// the analyzed candidate set.
	ErrUnknownKeyword = errors.New("keyword not in analyzed set")

	// ErrNotReadyToPublish indicates that the article has no generated
	// content to publish.
	ErrNotReadyToPublish = errors.New("article not ready to publish")

	// ErrUnknownPublisher indicates that no publisher is configured for
	// the requested CMS target.
	ErrUnknownPublisher = errors.New("unknown publish target")
)
