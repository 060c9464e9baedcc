package respond

import "regexp"

// Provider credentials travel inside wrapped provider errors (request
// dumps, DSNs). These patterns cover the secrets this service handles:
// Anthropic keys, OpenAI keys and database passwords embedded in URLs.
// The Anthropic pattern must run first since its prefix is a superset of
// OpenAI's.
var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	urlPasswordPattern  = regexp.MustCompile(`://([^:]+):([^@]+)@`)
)

// SanitizeError returns err's message with credentials masked, for log
// output.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
