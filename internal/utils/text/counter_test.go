package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seoforge/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"ascii title", "best espresso machines 2026", 27},
		{"japanese title", "エスプレッソマシンの選び方", 13},
		{"mixed article heading", "espressoマシン比較", 13},
		{"keyword with emoji", "coffee gear ☕", 13},
		{"flag emoji is two regional indicators", "🇯🇵", 2},
		{"whitespace only", " \t\n ", 4},
		{"precomposed accent", "café", 4},
		{"notification payload excerpt", "記事「home espresso setup」の生成が完了しました。", 34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.CountRunes(tt.input))
		})
	}
}

func TestCountRunes_DiffersFromByteLength(t *testing.T) {
	// The whole point of the helper: multi-byte text must count by
	// characters, not bytes.
	input := "コーヒー豆の挽き方"
	assert.Equal(t, 9, text.CountRunes(input))
	assert.Greater(t, len(input), text.CountRunes(input))
}
