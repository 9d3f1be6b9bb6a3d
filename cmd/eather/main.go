// Package main contains the entrypoint for the Eather Discord bot.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MARK404654/Eather/internal/ai"
	"github.com/MARK404654/Eather/internal/bot"
	"github.com/MARK404654/Eather/internal/bot/tasks"
	"github.com/MARK404654/Eather/internal/config"
	"github.com/MARK404654/Eather/internal/cooldown"
	"github.com/MARK404654/Eather/internal/database"
	"github.com/MARK404654/Eather/internal/discord"
	"github.com/MARK404654/Eather/internal/httpserver"
	"github.com/MARK404654/Eather/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components (config, logger, db, completion
// client, gateway, scheduler), starts them, handles graceful shutdown, and
// returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogJSON)

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	completer, err := ai.NewClient(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize completion client", "error", err)
		return 1
	}

	session, err := discord.New(cfg.DiscordToken, log)
	if err != nil {
		log.Error("failed to create discord session", "error", err)
		return 1
	}

	tracker := cooldown.New(cfg.CooldownWindow)
	pipeline := bot.NewPipeline(cfg, log, tracker, completer, session.Gateway(), store)
	session.AttachPipeline(ctx, pipeline)

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:  log,
		Store:   store,
		Tracker: tracker,
		Config:  cfg,
	}))
	if err != nil {
		log.Error("failed to create scheduler", "error", err)
		return 1
	}

	health := httpserver.New(cfg.HTTPPort, log)

	app := bot.NewBot(log, session, health, sched)

	log.Info("starting eather",
		"command_prefix", cfg.CommandPrefix,
		"ai_backend", cfg.AIBackend,
		"ai_model", cfg.AIModel)

	if err := app.Run(ctx); err != nil {
		log.Error("bot stopped with error", "error", err)
		return 1
	}
	return 0
}
