// Package text shapes model output into something that fits a Discord
// message: whitespace normalization plus length-limited truncation.
package text

import (
	"regexp"
	"strings"
)

var (
	controlCharsRegex     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`) // Control characters, except \t \n \r.
	multipleNewlinesRegex = regexp.MustCompile("\n{3,}")
)

// Sanitize normalizes model output for delivery: CRLF and lone CR become LF,
// non-printing control characters are dropped, runs of three or more blank
// lines collapse to one, and surrounding whitespace is trimmed. Markdown is
// left alone; Discord renders it natively.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = controlCharsRegex.ReplaceAllString(s, "")
	s = multipleNewlinesRegex.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// Shape truncates s to at most maxLen characters, appending marker after the
// cut when truncation happens. The marker is not counted against maxLen, so
// a truncated reply is maxLen plus the marker's length; callers that need a
// hard ceiling should size maxLen accordingly.
func Shape(s string, maxLen int, marker string) string {
	if maxLen <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	return string(runes[:maxLen]) + marker
}
