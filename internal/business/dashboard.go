package business

import (
	"context"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/inventory"
)

// WatchDashboard fetches the dashboard statistics every interval until ctx
// is done and passes each successful result to render. Failed fetches are
// logged and the loop goes on. A non positive interval means one minute.
func WatchDashboard(ctx context.Context, store *inventory.DashboardStore, interval time.Duration, render func(inventory.DashboardStats) error) error {
	if interval <= 0 {
		interval = time.Minute
	}

	c := time.Tick(interval)
	for {
		slogctx.Debug(ctx, "Refreshing dashboard statistics")
		stats, err := store.Fetch(ctx)
		if err != nil {
			slogctx.Error(ctx, "Failed to refresh dashboard statistics", "error", err)
		} else if err := render(stats); err != nil {
			return err
		}

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}
