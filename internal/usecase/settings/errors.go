// Package settings stores per-user configuration values, encrypting the
// sensitive ones at rest and masking them on every read path.
package settings

import "errors"

var (
	// ErrSettingNotFound is returned when no value exists for the key.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrCredentialMissing is returned by Resolve when a collaborator
	// asks for a credential the user has not configured.
	ErrCredentialMissing = errors.New("credential not configured")
)
