package bot_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MARK404654/Eather/internal/ai"
	"github.com/MARK404654/Eather/internal/bot"
	"github.com/MARK404654/Eather/internal/config"
	"github.com/MARK404654/Eather/internal/cooldown"
)

type sentMessage struct {
	kind string // "reply", "send", "typing"
	text string
}

type fakeGateway struct {
	mu        sync.Mutex
	sent      []sentMessage
	replyErr  error
	sendErr   error
	typingErr error
}

func (g *fakeGateway) Reply(_ context.Context, _ bot.Event, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.replyErr != nil {
		return g.replyErr
	}
	g.sent = append(g.sent, sentMessage{kind: "reply", text: text})
	return nil
}

func (g *fakeGateway) Send(_ context.Context, _ string, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, sentMessage{kind: "send", text: text})
	return nil
}

func (g *fakeGateway) Typing(_ context.Context, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.typingErr != nil {
		return g.typingErr
	}
	g.sent = append(g.sent, sentMessage{kind: "typing"})
	return nil
}

func (g *fakeGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

func (g *fakeGateway) replies() []string {
	var out []string
	for _, m := range g.messages() {
		if m.kind == "reply" {
			out = append(out, m.text)
		}
	}
	return out
}

type fakeCompleter struct {
	mu     sync.Mutex
	calls  int
	answer string
	err    error
}

func (c *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

func (c *fakeCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func testPipelineConfig() *config.Config {
	return &config.Config{
		CommandPrefix:    "!eather",
		CooldownWindow:   3 * time.Second,
		MaxReplyLength:   2000,
		TruncationMarker: "\n…[truncated]",
		Messages: config.Messages{
			EmptyPrompt:  "❌ Please provide a prompt.",
			Cooldown:     "⏳ Slow down! Try again in a few seconds.",
			RateLimited:  "🚦 Rate limit hit. Please wait a few seconds.",
			GeneralError: "❌ Groq API error. Try again.",
		},
	}
}

func newTestPipeline(cfg *config.Config, completer ai.Client, gateway bot.Gateway) *bot.Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := cooldown.New(cfg.CooldownWindow)
	return bot.NewPipeline(cfg, logger, tracker, completer, gateway, nil)
}

func event(author, text string) bot.Event {
	return bot.Event{
		AuthorID:  author,
		ChannelID: "chan-1",
		MessageID: "msg-1",
		Text:      text,
	}
}

func TestScreen(t *testing.T) {
	t.Parallel()

	cfg := testPipelineConfig()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		ev             bot.Event
		expected       bot.Disposition
		expectedPrompt string
	}{
		{
			name:     "bot-authored message is dropped",
			ev:       bot.Event{AuthorID: "self", Text: "!eather hi", FromBot: true},
			expected: bot.DropSelfAuthored,
		},
		{
			name:     "non-command message is dropped",
			ev:       event("u1", "good morning"),
			expected: bot.DropNotCommand,
		},
		{
			name:     "bare prefix is an empty prompt",
			ev:       event("u1", "!eather   "),
			expected: bot.RejectEmptyPrompt,
		},
		{
			name:           "command with prompt is accepted",
			ev:             event("u1", "!eather explain recursion"),
			expected:       bot.Accepted,
			expectedPrompt: "explain recursion",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := newTestPipeline(cfg, &fakeCompleter{answer: "ok"}, &fakeGateway{})
			disposition, prompt := p.Screen(tc.ev, now)
			if disposition != tc.expected {
				t.Errorf("Screen() disposition = %v, want %v", disposition, tc.expected)
			}
			if prompt != tc.expectedPrompt {
				t.Errorf("Screen() prompt = %q, want %q", prompt, tc.expectedPrompt)
			}
		})
	}
}

func TestScreenCooldown(t *testing.T) {
	t.Parallel()

	cfg := testPipelineConfig()
	p := newTestPipeline(cfg, &fakeCompleter{answer: "ok"}, &fakeGateway{})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if d, _ := p.Screen(event("u1", "!eather first"), base); d != bot.Accepted {
		t.Fatalf("first request disposition = %v, want Accepted", d)
	}
	if d, _ := p.Screen(event("u1", "!eather second"), base.Add(500*time.Millisecond)); d != bot.RejectCooldown {
		t.Errorf("request 500ms later disposition = %v, want RejectCooldown", d)
	}
	if d, _ := p.Screen(event("u1", "!eather third"), base.Add(3*time.Second)); d != bot.Accepted {
		t.Errorf("request after window disposition = %v, want Accepted", d)
	}
}

func TestScreenEmptyPromptDoesNotConsumeCooldown(t *testing.T) {
	t.Parallel()

	cfg := testPipelineConfig()
	p := newTestPipeline(cfg, &fakeCompleter{answer: "ok"}, &fakeGateway{})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if d, _ := p.Screen(event("u1", "!eather"), base); d != bot.RejectEmptyPrompt {
		t.Fatalf("empty prompt disposition = %v, want RejectEmptyPrompt", d)
	}
	// The rejected empty prompt must not have started a cooldown window.
	if d, _ := p.Screen(event("u1", "!eather real prompt"), base.Add(100*time.Millisecond)); d != bot.Accepted {
		t.Errorf("request right after empty prompt disposition = %v, want Accepted", d)
	}
}

func TestHandleIgnoresNonCommands(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	completer := &fakeCompleter{answer: "ok"}
	p := newTestPipeline(testPipelineConfig(), completer, gateway)

	p.Handle(context.Background(), event("u1", "just chatting"))
	p.Handle(context.Background(), bot.Event{AuthorID: "self", Text: "!eather hi", FromBot: true})

	if n := len(gateway.messages()); n != 0 {
		t.Errorf("gateway received %d messages, want 0", n)
	}
	if completer.callCount() != 0 {
		t.Errorf("completer called %d times, want 0", completer.callCount())
	}
}

func TestHandleSuccess(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	completer := &fakeCompleter{answer: "Use a base case to stop the recursion."}
	p := newTestPipeline(testPipelineConfig(), completer, gateway)

	p.Handle(context.Background(), event("u1", "!eather explain recursion"))

	if completer.callCount() != 1 {
		t.Fatalf("completer called %d times, want 1", completer.callCount())
	}
	replies := gateway.replies()
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	if replies[0] != "Use a base case to stop the recursion." {
		t.Errorf("reply = %q, want completion text", replies[0])
	}

	// A typing indicator should have been emitted before the reply.
	msgs := gateway.messages()
	if len(msgs) < 2 || msgs[0].kind != "typing" {
		t.Errorf("expected typing indicator before reply, got %v", msgs)
	}
}

func TestHandleOversizedReplyIsTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 2500)
	gateway := &fakeGateway{}
	p := newTestPipeline(testPipelineConfig(), &fakeCompleter{answer: long}, gateway)

	p.Handle(context.Background(), event("u1", "!eather write a long answer"))

	replies := gateway.replies()
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	want := strings.Repeat("a", 2000) + "\n…[truncated]"
	if replies[0] != want {
		t.Errorf("reply length = %d, want first 2000 characters plus marker", len(replies[0]))
	}
}

func TestHandleCooldownNotice(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	completer := &fakeCompleter{answer: "ok"}
	p := newTestPipeline(testPipelineConfig(), completer, gateway)

	p.Handle(context.Background(), event("u1", "!eather first question"))
	p.Handle(context.Background(), event("u1", "!eather second question"))

	if completer.callCount() != 1 {
		t.Errorf("completer called %d times, want 1 (second request throttled)", completer.callCount())
	}
	replies := gateway.replies()
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	if replies[1] != "⏳ Slow down! Try again in a few seconds." {
		t.Errorf("second reply = %q, want cooldown notice", replies[1])
	}
}

func TestHandleEmptyPromptNotice(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	completer := &fakeCompleter{answer: "ok"}
	p := newTestPipeline(testPipelineConfig(), completer, gateway)

	p.Handle(context.Background(), event("u1", "!eather   "))

	if completer.callCount() != 0 {
		t.Errorf("completer called %d times, want 0", completer.callCount())
	}
	replies := gateway.replies()
	if len(replies) != 1 || replies[0] != "❌ Please provide a prompt." {
		t.Errorf("replies = %v, want exactly the empty prompt notice", replies)
	}
}

func TestHandleRateLimited(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	completer := &fakeCompleter{err: fmt.Errorf("%w: status 429", ai.ErrRateLimited)}
	p := newTestPipeline(testPipelineConfig(), completer, gateway)

	p.Handle(context.Background(), event("u1", "!eather explain recursion"))

	replies := gateway.replies()
	if len(replies) != 1 || replies[0] != "🚦 Rate limit hit. Please wait a few seconds." {
		t.Errorf("replies = %v, want exactly the rate limit notice", replies)
	}
}

func TestHandleGenericFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
	}{
		{name: "upstream error", err: fmt.Errorf("%w: status 500", ai.ErrUpstream)},
		{name: "transport error", err: fmt.Errorf("%w: connection refused", ai.ErrTransport)},
		{name: "unclassified error", err: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gateway := &fakeGateway{}
			p := newTestPipeline(testPipelineConfig(), &fakeCompleter{err: tc.err}, gateway)

			p.Handle(context.Background(), event("u1", "!eather explain recursion"))

			replies := gateway.replies()
			if len(replies) != 1 || replies[0] != "❌ Groq API error. Try again." {
				t.Errorf("replies = %v, want exactly the generic error notice", replies)
			}
		})
	}
}

func TestHandleTypingFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{typingErr: errors.New("missing permission")}
	completer := &fakeCompleter{answer: "still works"}
	p := newTestPipeline(testPipelineConfig(), completer, gateway)

	p.Handle(context.Background(), event("u1", "!eather explain recursion"))

	replies := gateway.replies()
	if len(replies) != 1 || replies[0] != "still works" {
		t.Errorf("replies = %v, want the completion despite typing failure", replies)
	}
}

func TestHandleReplyFailureFallsBackToChannelSend(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{replyErr: errors.New("missing reply permission")}
	completer := &fakeCompleter{answer: "the answer"}
	p := newTestPipeline(testPipelineConfig(), completer, gateway)

	p.Handle(context.Background(), event("u1", "!eather explain recursion"))

	msgs := gateway.messages()
	var sends []string
	for _, m := range msgs {
		if m.kind == "send" {
			sends = append(sends, m.text)
		}
	}
	if len(sends) != 1 || sends[0] != "❌ Groq API error. Try again." {
		t.Errorf("fallback sends = %v, want exactly one plain error notice", sends)
	}
}
