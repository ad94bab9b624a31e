package cron

import (
	"context"
	"fmt"

	"github.com/pmcell/catalog-backend/pkg/logger"
)

type cacheWarmer interface {
	WarmCache(ctx context.Context) error
}

// NewCacheWarmJob builds the job that repopulates the catalog cache.
func NewCacheWarmJob(logg *logger.Logger, catalog cacheWarmer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &cacheWarmJob{logg: logg, catalog: catalog}, nil
}

type cacheWarmJob struct {
	logg    *logger.Logger
	catalog cacheWarmer
}

func (j *cacheWarmJob) Name() string { return "catalog-cache-warm" }

func (j *cacheWarmJob) Run(ctx context.Context) error {
	if err := j.catalog.WarmCache(ctx); err != nil {
		return fmt.Errorf("warm catalog cache: %w", err)
	}
	j.logg.Info(ctx, "cron.cache_warm.complete")
	return nil
}
