package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/watchlist/internal/instruments"
	"github.com/wonny/watchlist/pkg/logger"
)

// CatalogWarmupJob reloads instrument catalogs before the open
// ⭐ SSOT: 종목 마스터 갱신 스케줄은 이 Job에서만
type CatalogWarmupJob struct {
	catalog   *instruments.Catalog
	exchanges []string
	logger    *logger.Logger
}

// NewCatalogWarmupJob creates a warmup job for the given exchanges
func NewCatalogWarmupJob(catalog *instruments.Catalog, exchanges []string, log *logger.Logger) *CatalogWarmupJob {
	return &CatalogWarmupJob{
		catalog:   catalog,
		exchanges: exchanges,
		logger:    log,
	}
}

// Name returns the job name
func (j *CatalogWarmupJob) Name() string {
	return "catalog-warmup"
}

// Schedule returns the cron schedule (08:45 weekdays, before the 09:15 open)
func (j *CatalogWarmupJob) Schedule() string {
	return "0 45 8 * * 1-5"
}

// Run refreshes every exchange catalog regardless of its age
func (j *CatalogWarmupJob) Run(ctx context.Context) error {
	for _, ex := range j.exchanges {
		idx, err := j.catalog.Refresh(ctx, ex)
		if err != nil {
			return fmt.Errorf("refresh %s catalog: %w", ex, err)
		}
		j.logger.WithFields(map[string]interface{}{
			"exchange":    ex,
			"instruments": idx.Len(),
		}).Info("Catalog refreshed")
	}
	return nil
}
