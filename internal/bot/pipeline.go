// Package bot implements the message pipeline that turns inbound Discord
// messages into completion requests and replies, plus the lifecycle
// orchestration and scheduled task plumbing around it.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MARK404654/Eather/internal/ai"
	"github.com/MARK404654/Eather/internal/command"
	"github.com/MARK404654/Eather/internal/config"
	"github.com/MARK404654/Eather/internal/cooldown"
	"github.com/MARK404654/Eather/internal/database"
	"github.com/MARK404654/Eather/internal/text"
)

// Event is one inbound message, reduced to what the pipeline needs.
type Event struct {
	AuthorID  string
	ChannelID string
	MessageID string
	Text      string
	FromBot   bool
}

// Gateway is the outbound surface of the chat service. The pipeline never
// touches the Discord session directly so it can be tested with a fake.
type Gateway interface {
	// Reply sends text as a reply to the originating message.
	Reply(ctx context.Context, ev Event, text string) error
	// Send sends plain text to a channel, without a reply reference.
	Send(ctx context.Context, channelID, text string) error
	// Typing emits a transient typing indicator to a channel.
	Typing(ctx context.Context, channelID string) error
}

// Disposition is the screening verdict for one inbound event, before any
// network call is made.
type Disposition int

const (
	// DropSelfAuthored: authored by a bot; discarded to prevent feedback loops.
	DropSelfAuthored Disposition = iota
	// DropNotCommand: does not start with the command prefix; discarded silently.
	DropNotCommand
	// RejectEmptyPrompt: command with nothing after the prefix; gets a visible
	// rejection and does not consume the cooldown.
	RejectEmptyPrompt
	// RejectCooldown: user is inside their cooldown window; gets a throttle
	// notice and no completion call.
	RejectCooldown
	// Accepted: proceeds to the completion call. The cooldown timestamp is
	// already recorded by the time this verdict is returned.
	Accepted
)

// Pipeline orchestrates prompt extraction, cooldown admission, the
// completion call, and reply shaping for each inbound event.
type Pipeline struct {
	logger           *slog.Logger
	messages         config.Messages
	maxReplyLength   int
	truncationMarker string
	extractor        command.Extractor
	tracker          *cooldown.Tracker
	completer        ai.Client
	gateway          Gateway
	store            database.Store
	now              func() time.Time
}

// NewPipeline wires a Pipeline from its collaborators. store may be nil when
// usage accounting is disabled.
func NewPipeline(
	cfg *config.Config,
	logger *slog.Logger,
	tracker *cooldown.Tracker,
	completer ai.Client,
	gateway Gateway,
	store database.Store,
) *Pipeline {
	return &Pipeline{
		logger:           logger.With("component", "pipeline"),
		messages:         cfg.Messages,
		maxReplyLength:   cfg.MaxReplyLength,
		truncationMarker: cfg.TruncationMarker,
		extractor:        command.NewExtractor(cfg.CommandPrefix, cfg.CommandFoldCase),
		tracker:          tracker,
		completer:        completer,
		gateway:          gateway,
		store:            store,
		now:              time.Now,
	}
}

// Screen classifies an event without side effects beyond cooldown admission:
// an Accepted verdict has already consumed the user's cooldown slot, and that
// is not rolled back if the completion call later fails.
func (p *Pipeline) Screen(ev Event, now time.Time) (Disposition, string) {
	if ev.FromBot {
		return DropSelfAuthored, ""
	}

	prompt, result := p.extractor.Extract(ev.Text)
	switch result {
	case command.NotACommand:
		return DropNotCommand, ""
	case command.EmptyPrompt:
		return RejectEmptyPrompt, ""
	}

	if !p.tracker.Admit(ev.AuthorID, now) {
		return RejectCooldown, ""
	}

	return Accepted, prompt
}

// Handle processes one inbound event end to end. All failures are terminal
// for the event; there are no retries.
func (p *Pipeline) Handle(ctx context.Context, ev Event) {
	now := p.now()
	disposition, prompt := p.Screen(ev, now)

	switch disposition {
	case DropSelfAuthored, DropNotCommand:
		return
	case RejectEmptyPrompt:
		p.logger.InfoContext(ctx, "command with empty prompt",
			"user_id", ev.AuthorID, "channel_id", ev.ChannelID)
		p.reply(ctx, ev, p.messages.EmptyPrompt)
		return
	case RejectCooldown:
		p.logger.InfoContext(ctx, "request rejected by cooldown",
			"user_id", ev.AuthorID, "channel_id", ev.ChannelID)
		p.reply(ctx, ev, p.messages.Cooldown)
		return
	}

	p.logger.InfoContext(ctx, "handling prompt",
		"user_id", ev.AuthorID, "channel_id", ev.ChannelID, "prompt_len", len(prompt))

	p.recordUsage(ctx, ev.AuthorID, now)

	// Best-effort; a failed typing indicator never aborts the request.
	if err := p.gateway.Typing(ctx, ev.ChannelID); err != nil {
		p.logger.DebugContext(ctx, "failed to send typing indicator",
			"error", err, "channel_id", ev.ChannelID)
	}

	answer, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, ai.ErrRateLimited) {
			p.logger.WarnContext(ctx, "completion rate limited", "user_id", ev.AuthorID)
			p.reply(ctx, ev, p.messages.RateLimited)
			return
		}
		p.logger.ErrorContext(ctx, "completion failed",
			"error", err, "user_id", ev.AuthorID, "channel_id", ev.ChannelID)
		p.reply(ctx, ev, p.messages.GeneralError)
		return
	}

	p.reply(ctx, ev, text.Shape(text.Sanitize(answer), p.maxReplyLength, p.truncationMarker))
}

// reply sends text as a reply to the originating message, falling back to a
// plain channel message when the reply itself cannot be delivered.
func (p *Pipeline) reply(ctx context.Context, ev Event, msg string) {
	err := p.gateway.Reply(ctx, ev, msg)
	if err == nil {
		return
	}
	p.logger.ErrorContext(ctx, "failed to send reply, falling back to channel message",
		"error", err, "channel_id", ev.ChannelID, "message_id", ev.MessageID)

	if err := p.gateway.Send(ctx, ev.ChannelID, p.messages.GeneralError); err != nil {
		p.logger.ErrorContext(ctx, "failed to send fallback channel message",
			"error", err, "channel_id", ev.ChannelID)
	}
}

// recordUsage bumps the per-user request counter. Best-effort: accounting
// never blocks or fails a request.
func (p *Pipeline) recordUsage(ctx context.Context, userID string, at time.Time) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordRequest(ctx, userID, at); err != nil {
		p.logger.WarnContext(ctx, "failed to record usage", "error", err, "user_id", userID)
	}
}
