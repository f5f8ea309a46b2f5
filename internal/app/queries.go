package app

import (
	"context"
	"time"

	"hotel_ratecheck/internal/domain"
)

type QueryService struct {
	runs     domain.RunRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RunRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{runs: r, cache: c, cacheTTL: ttl}
}

// LatestRun serves the cached snapshot when present and falls back to the store.
func (s *QueryService) LatestRun(ctx context.Context) (domain.CheckRun, error) {
	var run domain.CheckRun
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, LatestRunKey, &run); ok {
			return run, nil
		}
	}
	run, err := s.runs.LatestRun(ctx)
	if err != nil {
		return domain.CheckRun{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, LatestRunKey, run, int(s.cacheTTL.Seconds()))
	}
	return run, nil
}
