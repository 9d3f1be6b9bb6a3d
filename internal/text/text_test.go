package text_test

import (
	"strings"
	"testing"

	"github.com/MARK404654/Eather/internal/text"
)

const marker = "\n…[truncated]"

func TestShape(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short text is unchanged",
			input:    "hello world",
			maxLen:   2000,
			expected: "hello world",
		},
		{
			name:     "text exactly at the limit is unchanged",
			input:    strings.Repeat("a", 2000),
			maxLen:   2000,
			expected: strings.Repeat("a", 2000),
		},
		{
			name:     "empty text is unchanged",
			input:    "",
			maxLen:   2000,
			expected: "",
		},
		{
			name:     "oversized text is cut and marked",
			input:    strings.Repeat("a", 2500),
			maxLen:   2000,
			expected: strings.Repeat("a", 2000) + marker,
		},
		{
			name:     "one character over the limit",
			input:    strings.Repeat("b", 2001),
			maxLen:   2000,
			expected: strings.Repeat("b", 2000) + marker,
		},
		{
			name:     "multibyte text counts characters not bytes",
			input:    strings.Repeat("é", 10),
			maxLen:   5,
			expected: strings.Repeat("é", 5) + marker,
		},
		{
			name:     "non-positive limit disables shaping",
			input:    "whatever",
			maxLen:   0,
			expected: "whatever",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := text.Shape(tc.input, tc.maxLen, marker)
			if got != tc.expected {
				t.Errorf("Shape() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestShapePreservesPrefix(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("x", 3000)
	got := text.Shape(input, 2000, marker)

	if !strings.HasPrefix(got, input[:2000]) {
		t.Error("shaped text should start with the first maxLen characters of the input")
	}
	if !strings.HasSuffix(got, marker) {
		t.Error("shaped text should end with the truncation marker")
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text unchanged",
			input:    "use a for loop",
			expected: "use a for loop",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  answer  \n",
			expected: "answer",
		},
		{
			name:     "windows line endings normalized",
			input:    "line1\r\nline2\rline3",
			expected: "line1\nline2\nline3",
		},
		{
			name:     "excess blank lines collapsed",
			input:    "para1\n\n\n\npara2",
			expected: "para1\n\npara2",
		},
		{
			name:     "control characters stripped",
			input:    "he\x00llo\x1b world",
			expected: "hello world",
		},
		{
			name:     "code fences preserved",
			input:    "```go\nfmt.Println(\"hi\")\n```",
			expected: "```go\nfmt.Println(\"hi\")\n```",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := text.Sanitize(tc.input)
			if got != tc.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
