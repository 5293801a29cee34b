package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"review_insights/internal/domain"
)

type IngestionService struct {
	src   domain.ReviewSource
	repo  domain.ReviewRepository
	cache domain.Cache
	norm  *Normalizer
	obs   Observer
}

func NewIngestionService(src domain.ReviewSource, r domain.ReviewRepository, cache domain.Cache, norm *Normalizer, obs Observer) *IngestionService {
	if norm == nil {
		norm = NewNormalizer()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &IngestionService{src: src, repo: r, cache: cache, norm: norm, obs: obs}
}

// IngestApp pulls up to count reviews for one app and stores them under
// entity. A source that reports the app as missing or forbidden is logged as a
// miss and does not fail the run.
func (s *IngestionService) IngestApp(ctx context.Context, entity, appID string, count int) (NormalizeStats, error) {
	raw, err := s.src.FetchReviews(ctx, appID, count)
	if err != nil {
		if status, ok := missStatus(err); ok {
			log.Warn().Err(err).Str("entity", entity).Str("app_id", appID).Int("status", status).Msg("review source miss")
			_ = s.repo.LogIngest(ctx, "app:"+appID, 0, 0, map[string]int{fmt.Sprintf("http_%d", status): 1})
			return NormalizeStats{Reasons: map[string]int{}}, nil
		}
		return NormalizeStats{}, fmt.Errorf("fetch reviews for %s: %w", entity, err)
	}
	rs, st := s.norm.NormalizeEntity(entity, raw)
	return st, s.store(ctx, "app:"+appID, rs, st)
}

// IngestRecords normalizes records loaded elsewhere (a dataset file) and
// stores them. Records must name their entity.
func (s *IngestionService) IngestRecords(ctx context.Context, source string, raw []map[string]any) (NormalizeStats, error) {
	rs, st := s.norm.Normalize(raw)
	return st, s.store(ctx, source, rs, st)
}

func (s *IngestionService) store(ctx context.Context, source string, rs []domain.Review, st NormalizeStats) error {
	s.obs.Normalized(st.Kept, st.Reasons)
	ev := log.Info()
	if st.Dropped > 0 {
		ev = log.Warn()
	}
	ev.Str("source", source).Int("total", st.Total).Int("kept", st.Kept).Int("dropped", st.Dropped).
		Interface("reasons", st.Reasons).Msg("normalized reviews")

	if len(rs) > 0 {
		if err := s.repo.UpsertReviews(ctx, rs); err != nil {
			// do not swallow this; surface so we know inserts failed
			return fmt.Errorf("upsert reviews failed for %s: %w", source, err)
		}
	}
	if err := s.repo.LogIngest(ctx, source, st.Total, st.Kept, st.Reasons); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("log ingest failed")
	}
	// even with zero new reviews, drop cached reads so they are recomputed
	invalidate(ctx, s.cache)
	return nil
}

// missStatus maps not-found/unauthorized/forbidden source errors to a status.
func missStatus(err error) (int, bool) {
	low := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found"):
		return 404, true
	case strings.Contains(low, "unauthorized"):
		return 401, true
	case strings.Contains(low, "forbidden"):
		return 403, true
	}
	return 0, false
}

func invalidate(ctx context.Context, c domain.Cache) {
	if c == nil {
		return
	}
	if err := c.Del(ctx, cachePrefix+"*"); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
