// Package ai provides the completion client interface and its backend
// implementations (Groq's OpenAI-compatible API and Google Gemini).
package ai

import (
	"context"
	"errors"
)

// Completion failure classes. Every error returned by a Client wraps exactly
// one of these, so callers can pick a user-visible message with errors.Is
// while the wrapped detail stays available for logging.
var (
	// ErrRateLimited means the upstream rejected the request with HTTP 429.
	ErrRateLimited = errors.New("completion rate limited")
	// ErrUpstream means the upstream answered with a non-success status or
	// a payload missing the expected completion text.
	ErrUpstream = errors.New("completion upstream error")
	// ErrTransport means the request never produced an HTTP response:
	// timeout, connection failure, DNS error.
	ErrTransport = errors.New("completion transport error")
)

// Client generates a completion for a single prompt. Implementations apply
// their own bounded timeout on top of ctx and classify failures with the
// sentinel errors above.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
