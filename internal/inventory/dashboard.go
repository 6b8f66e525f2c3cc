package inventory

import (
	"context"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

const PathDashboardStats = "/dashboard/stats/"

// DashboardStore holds the last statistics fetched from the server.
type DashboardStore struct {
	api API
	opState

	mu    sync.Mutex
	stats *DashboardStats
}

func NewDashboardStore(api API) *DashboardStore {
	return &DashboardStore{api: api}
}

// Stats returns the last fetched statistics.
func (s *DashboardStore) Stats() (DashboardStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stats == nil {
		return DashboardStats{}, false
	}

	return *s.stats, true
}

// Fetch reloads the statistics. On failure the previous statistics are kept.
func (s *DashboardStore) Fetch(ctx context.Context) (DashboardStats, error) {
	s.begin()
	defer s.end()

	var stats DashboardStats
	if err := s.api.Get(ctx, PathDashboardStats, nil, &stats); err != nil {
		slogctx.Error(ctx, "Failed to fetch dashboard stats", "error", err)
		return DashboardStats{}, s.fail("could not load the dashboard statistics", err)
	}

	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()

	return stats, nil
}
