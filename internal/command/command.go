// Package command decides whether an inbound message is an invocation of the
// bot's command and, if so, extracts the prompt that follows the prefix.
package command

import "strings"

// Result classifies the outcome of extracting a prompt from a raw message.
type Result int

const (
	// NotACommand means the message does not start with the command prefix.
	// The bot takes no action at all for these messages.
	NotACommand Result = iota
	// EmptyPrompt means the message is a command invocation but nothing
	// follows the prefix after trimming whitespace.
	EmptyPrompt
	// OK means a non-empty prompt was extracted.
	OK
)

// Extractor matches messages against a fixed command prefix.
type Extractor struct {
	prefix   string
	foldCase bool
}

// NewExtractor creates an Extractor for the given prefix. When foldCase is
// true the prefix match ignores ASCII and Unicode case; the default behavior
// is an exact match.
func NewExtractor(prefix string, foldCase bool) Extractor {
	return Extractor{prefix: prefix, foldCase: foldCase}
}

// Extract returns the trimmed prompt following the command prefix, together
// with a Result describing the match. The prompt string is empty unless the
// Result is OK.
func (e Extractor) Extract(text string) (string, Result) {
	if !e.matches(text) {
		return "", NotACommand
	}

	prompt := strings.TrimSpace(text[len(e.prefix):])
	if prompt == "" {
		return "", EmptyPrompt
	}
	return prompt, OK
}

func (e Extractor) matches(text string) bool {
	if len(text) < len(e.prefix) {
		return false
	}
	head := text[:len(e.prefix)]
	if e.foldCase {
		return strings.EqualFold(head, e.prefix)
	}
	return head == e.prefix
}
