package app

import (
	"context"
	"fmt"
	"time"

	"review_insights/internal/domain"
	"review_insights/internal/insights"
)

type QueryService struct {
	repo     domain.ReviewRepository
	store    domain.InsightStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, st domain.InsightStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, store: st, cache: c, cacheTTL: ttl}
}

// GetInsights returns the latest stored insights for entity, or
// domain.ErrNotFound.
func (s *QueryService) GetInsights(ctx context.Context, entity string) (domain.EntityInsights, error) {
	key := entityKey(entity)
	var out domain.EntityInsights
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}
	ins, err := s.store.LatestInsights(ctx, entity)
	if err != nil {
		return domain.EntityInsights{}, err
	}
	s.cacheSet(ctx, key, ins)
	return ins, nil
}

func (s *QueryService) ListInsights(ctx context.Context) (domain.Report, error) {
	var out domain.Report
	if s.cacheGet(ctx, cacheKeyAll, &out) {
		return out, nil
	}
	rep, err := s.store.ListLatestInsights(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKeyAll, rep)
	return rep, nil
}

// GetComparison recomputes the comparison table from stored reviews, taking
// top driver and pain point from the latest reports.
func (s *QueryService) GetComparison(ctx context.Context) (domain.Comparison, error) {
	var out domain.Comparison
	if s.cacheGet(ctx, cacheKeyCompare, &out) {
		return out, nil
	}
	ents, err := s.repo.ListEntities(ctx)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("list entities: %w", err)
	}
	groups := make(map[string][]domain.Review, len(ents))
	for _, e := range ents {
		rs, err := s.repo.ListReviews(ctx, e)
		if err != nil {
			return domain.Comparison{}, fmt.Errorf("list reviews for %s: %w", e, err)
		}
		groups[e] = rs
	}
	rep, err := s.ListInsights(ctx)
	if err != nil {
		return domain.Comparison{}, err
	}
	cmp := insights.Compare(groups, rep)
	s.cacheSet(ctx, cacheKeyCompare, cmp)
	return cmp, nil
}

func (s *QueryService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	return ok && err == nil
}

func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
}
