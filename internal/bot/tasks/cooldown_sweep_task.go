package tasks

import (
	"context"
	"time"
)

// newCooldownSweepTask creates the task that evicts stale entries from the
// cooldown tracker, keeping its memory bounded in long-running deployments.
func newCooldownSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cooldown_sweep")

	return func(ctx context.Context) error {
		evicted := deps.Tracker.Sweep(time.Now())
		if evicted > 0 {
			log.InfoContext(ctx, "swept stale cooldown entries",
				"evicted", evicted, "remaining", deps.Tracker.Len())
		}
		return nil
	}
}
