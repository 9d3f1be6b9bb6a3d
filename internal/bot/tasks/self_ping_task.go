package tasks

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const selfPingTimeout = 30 * time.Second

// newSelfPingTask creates the keep-alive task: a periodic GET against the
// bot's own public URL so sleeping-idle hosts keep the process awake.
// Best-effort; a failed ping is logged and the next tick tries again.
func newSelfPingTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "self_ping")
	client := &http.Client{Timeout: selfPingTimeout}

	return func(ctx context.Context) error {
		url := deps.Config.SelfURL
		if url == "" {
			return nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to build self-ping request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("self-ping failed: %w", err)
		}
		defer resp.Body.Close()

		log.DebugContext(ctx, "self-ping completed", "status", resp.StatusCode)
		return nil
	}
}
