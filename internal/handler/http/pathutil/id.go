package pathutil

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseUUID parses a resource identifier taken from a URL path segment
// (typically r.PathValue("id")). The nil UUID is rejected: it is never a
// valid resource identifier.
//
// Example:
//
//	id, err := pathutil.ParseUUID(r.PathValue("id"))
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
