// Package text holds small text-processing helpers shared across the
// notification and provider layers.
package text

// CountRunes returns the number of Unicode code points in s. Provider
// limits and notification payload caps are character-based, so callers
// must not use len(), which counts bytes and overestimates Japanese
// text and emoji.
func CountRunes(s string) int {
	return len([]rune(s))
}
