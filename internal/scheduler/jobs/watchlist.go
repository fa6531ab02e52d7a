package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/watchlist/internal/watchlist"
	"github.com/wonny/watchlist/pkg/logger"
)

// WatchlistRefreshJob rebuilds the watchlist during market hours,
// which keeps the caches warm for dashboard readers
type WatchlistRefreshJob struct {
	builder *watchlist.Builder
	symbols []string
	logger  *logger.Logger

	mu   sync.RWMutex
	last *watchlist.Snapshot
}

// NewWatchlistRefreshJob creates a new refresh job
func NewWatchlistRefreshJob(builder *watchlist.Builder, symbols []string, log *logger.Logger) *WatchlistRefreshJob {
	return &WatchlistRefreshJob{
		builder: builder,
		symbols: symbols,
		logger:  log,
	}
}

// Name returns the job name
func (j *WatchlistRefreshJob) Name() string {
	return "watchlist-refresh"
}

// Schedule returns the cron schedule (every minute, 09:00-15:59 weekdays)
func (j *WatchlistRefreshJob) Schedule() string {
	return "0 */1 9-15 * * 1-5"
}

// Run builds the watchlist; it fails only when every symbol failed
func (j *WatchlistRefreshJob) Run(ctx context.Context) error {
	snap := j.builder.Build(ctx, j.symbols)

	j.mu.Lock()
	j.last = &snap
	j.mu.Unlock()

	for _, row := range snap.Rows {
		if !row.OK() {
			j.logger.WithFields(map[string]interface{}{
				"symbol": row.Symbol,
				"error":  row.Error,
			}).Warn("Watchlist symbol failed")
		}
	}

	if len(snap.Rows) > 0 && snap.Failed == len(snap.Rows) {
		return fmt.Errorf("all %d symbols failed: %w", snap.Failed, errors.New(snap.Rows[0].Error))
	}

	j.logger.WithFields(map[string]interface{}{
		"symbols": len(snap.Rows),
		"failed":  snap.Failed,
	}).Info("Watchlist refreshed")

	return nil
}

// Last returns the most recent snapshot
func (j *WatchlistRefreshJob) Last() (watchlist.Snapshot, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.last == nil {
		return watchlist.Snapshot{}, false
	}
	return *j.last, true
}
