// Package expander produces related keyword candidates from a seed keyword
// using a language model. It includes adapters for OpenAI and Claude
// (Anthropic) with circuit breaker and retry protection.
package expander

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"seoforge/internal/usecase/keyword"
)

// CredentialSource resolves decrypted per-user credentials. Implemented by
// the settings service.
type CredentialSource interface {
	Resolve(ctx context.Context, userID uuid.UUID, keys ...string) (map[string]string, error)
}

// ErrNoAPIKey is returned when neither the user's vault nor the
// environment supplies a model API key.
var ErrNoAPIKey = errors.New("expansion api key not configured")

// resolveKey picks the model API key for one user's run: the vaulted key
// under settingKey wins, envKey is the fallback.
func resolveKey(ctx context.Context, creds CredentialSource, userID uuid.UUID, settingKey, envKey string) (string, error) {
	if creds != nil && userID != uuid.Nil {
		resolved, err := creds.Resolve(ctx, userID, settingKey)
		if err == nil && resolved[settingKey] != "" {
			return resolved[settingKey], nil
		}
	}
	if envKey != "" {
		return envKey, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoAPIKey, settingKey)
}

// buildPrompt asks the model for a plain numbered list so the response can
// be parsed without a structured-output contract.
func buildPrompt(req keyword.Request, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an SEO keyword researcher. Generate up to %d search keywords closely related to %q.\n", limit, req.Seed)
	if req.Target != "" {
		fmt.Fprintf(&b, "The audience is: %s.\n", req.Target)
	}
	if len(req.Important) > 0 {
		fmt.Fprintf(&b, "These keywords are priorities; include them and variations built around them: %s.\n",
			strings.Join(req.Important, ", "))
	}
	if len(req.Secondary) > 0 {
		fmt.Fprintf(&b, "The following keywords were already chosen in an earlier round; suggest complementary keywords rather than repeating them: %s.\n",
			strings.Join(req.Secondary, ", "))
	}
	b.WriteString("Include long-tail variations, question phrasings and commercial-intent variants.\n")
	b.WriteString("Respond with one keyword per line as a numbered list, no explanations.")
	return b.String()
}

// parseKeywordList extracts keywords from a model response, accepting
// numbered ("1. foo"), bulleted ("- foo", "* foo") and bare lines. Markdown
// emphasis and surrounding quotes are stripped.
func parseKeywordList(text string, limit int) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, limit)
	for _, line := range strings.Split(text, "\n") {
		kw := cleanLine(line)
		if kw == "" {
			continue
		}
		lower := strings.ToLower(kw)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, kw)
		if len(out) == limit {
			break
		}
	}
	return out
}

func cleanLine(line string) string {
	s := strings.TrimSpace(line)
	if s == "" {
		return ""
	}

	// Numbered list marker: "12." or "12)".
	if i := strings.IndexAny(s, ".)"); i > 0 && isDigits(s[:i]) {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "-*• \t")
	}

	s = strings.Trim(s, " \t")
	s = strings.Trim(s, `"'`)
	s = strings.Trim(s, "*_`")
	s = strings.TrimSpace(s)

	// A line the model used as a preamble ("Here are 50 keywords:") is
	// not a keyword.
	if strings.HasSuffix(s, ":") {
		return ""
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
