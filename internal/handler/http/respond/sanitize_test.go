package respond

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeError(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"anthropic key",
			"claude api error: 401 for key sk-ant-api03-abcDEF123",
			"claude api error: 401 for key sk-ant-****",
		},
		{
			"openai key",
			"openai api error: incorrect key sk-proj1234567890abc provided",
			"openai api error: incorrect key sk-**** provided",
		},
		{
			"dsn password",
			"open postgres://seoforge:hunter2@db:5432/seoforge: timeout",
			"open postgres://seoforge:****@db:5432/seoforge: timeout",
		},
		{
			"plain message untouched",
			"enrichment provider unavailable",
			"enrichment provider unavailable",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeError(errors.New(tc.in)))
		})
	}
}

func TestSanitizeError_Nil(t *testing.T) {
	assert.Equal(t, "", SanitizeError(nil))
}
