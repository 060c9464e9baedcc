// Package keyword implements the two-phase keyword enrichment pipeline.
// A seed keyword is expanded into candidate keywords by a language model,
// scored against bulk search metrics, and the strongest candidates are
// re-scored with high-accuracy metrics.
package keyword

import "errors"

// Sentinel errors for keyword pipeline operations.
var (
	// ErrGenerationFailed indicates that the language model could not
	// produce keyword candidates. The run cannot proceed without them.
	ErrGenerationFailed = errors.New("keyword generation failed")

	// ErrEnrichmentUnavailable indicates that bulk search metrics could
	// not be retrieved. Candidates cannot be scored without them.
	ErrEnrichmentUnavailable = errors.New("enrichment data unavailable")
)
