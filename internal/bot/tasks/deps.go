// Package tasks implements the bot's scheduled background tasks: the
// keep-alive self-ping, the cooldown map sweep, and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/MARK404654/Eather/internal/config"
	"github.com/MARK404654/Eather/internal/cooldown"
	"github.com/MARK404654/Eather/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	Tracker *cooldown.Tracker
	Config  *config.Config
}
