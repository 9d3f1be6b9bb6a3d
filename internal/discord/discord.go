// Package discord adapts the Discord gateway (via discordgo) to the message
// pipeline: it translates inbound message events and implements the
// pipeline's outbound Gateway interface.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/MARK404654/Eather/internal/bot"
)

// Session wraps a discordgo session together with the handler wiring.
type Session struct {
	session *discordgo.Session
	logger  *slog.Logger
}

// New creates a Discord session with the gateway intents the bot needs:
// guilds, guild messages, and message content.
func New(token string, logger *slog.Logger) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is empty")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	log := logger.With("component", "discord")
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info("logged in",
			"username", r.User.Username,
			"discriminator", r.User.Discriminator,
			"guilds", len(r.Guilds))
	})

	return &Session{session: session, logger: log}, nil
}

// AttachPipeline registers the message pipeline as the handler for inbound
// message events. discordgo invokes each handler on its own goroutine, so
// handling one event never blocks the gateway read loop.
func (s *Session) AttachPipeline(ctx context.Context, pipeline *bot.Pipeline) {
	s.session.AddHandler(func(ds *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}

		fromBot := m.Author.Bot
		if ds.State != nil && ds.State.User != nil && m.Author.ID == ds.State.User.ID {
			fromBot = true
		}

		pipeline.Handle(ctx, bot.Event{
			AuthorID:  m.Author.ID,
			ChannelID: m.ChannelID,
			MessageID: m.ID,
			Text:      m.Content,
			FromBot:   fromBot,
		})
	})
}

// Run opens the gateway connection and blocks until ctx is cancelled or the
// connection cannot be established.
func (s *Session) Run(ctx context.Context) error {
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway connection: %w", err)
	}
	s.logger.Info("discord gateway connection open")

	<-ctx.Done()

	s.logger.Info("closing discord gateway connection")
	if err := s.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord gateway connection: %w", err)
	}
	return nil
}

// Gateway returns the outbound message surface consumed by the pipeline.
func (s *Session) Gateway() bot.Gateway {
	return &gateway{session: s.session}
}

// gateway implements bot.Gateway on top of the discordgo REST surface.
type gateway struct {
	session *discordgo.Session
}

func (g *gateway) Reply(_ context.Context, ev bot.Event, text string) error {
	_, err := g.session.ChannelMessageSendReply(ev.ChannelID, text, &discordgo.MessageReference{
		MessageID: ev.MessageID,
		ChannelID: ev.ChannelID,
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (g *gateway) Send(_ context.Context, channelID, text string) error {
	if _, err := g.session.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("failed to send channel message: %w", err)
	}
	return nil
}

func (g *gateway) Typing(_ context.Context, channelID string) error {
	if err := g.session.ChannelTyping(channelID); err != nil {
		return fmt.Errorf("failed to send typing indicator: %w", err)
	}
	return nil
}
