package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-lived component that serves until its context is
// cancelled. The Discord session and the health server both satisfy it.
type Runner interface {
	Run(ctx context.Context) error
}

// Bot owns the lifecycle of the application's components: the Discord
// gateway connection, the health server, and the scheduler.
type Bot struct {
	logger    *slog.Logger
	gateway   Runner
	health    Runner
	scheduler *Scheduler
}

// NewBot creates the lifecycle orchestrator. health may be nil.
func NewBot(logger *slog.Logger, gateway Runner, health Runner, scheduler *Scheduler) *Bot {
	return &Bot{
		logger:    logger.With("component", "orchestrator"),
		gateway:   gateway,
		health:    health,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is cancelled or one
// of them fails. A component failure cancels the rest before returning.
func (b *Bot) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("starting discord gateway")
		if err := b.gateway.Run(gCtx); err != nil {
			return fmt.Errorf("discord gateway: %w", err)
		}
		return nil
	})

	if b.health != nil {
		g.Go(func() error {
			if err := b.health.Run(gCtx); err != nil {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("bot stopped due to error", "error", err)
		return err
	}

	b.logger.Info("bot stopped gracefully")
	return nil
}
