package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// narrativeEchoPrefixes are label lines some models prepend despite the
// prompt asking for plain prose. Matched case-insensitively at the start.
var narrativeEchoPrefixes = []string{
	"career guidance:",
	"here is your career guidance:",
	"here's your personalized career guidance:",
	"personalized career guidance:",
}

// CleanNarrative strips generation artifacts from model output: code fences,
// a leading echo of the prompt's label, and stray wrapping quotes.
func CleanNarrative(s string) string {
	s = stripFences(s)
	lower := strings.ToLower(s)
	for _, prefix := range narrativeEchoPrefixes {
		if strings.HasPrefix(lower, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
