package domain

import "context"

type ReviewRepository interface {
	UpsertReviews(ctx context.Context, rs []Review) error
	ListEntities(ctx context.Context) ([]string, error)
	ListReviews(ctx context.Context, entity string) ([]Review, error)
	LogIngest(ctx context.Context, source string, total, kept int, reasons map[string]int) error
}

type InsightStore interface {
	SaveInsights(ctx context.Context, runID, entity string, ins EntityInsights) error
	LatestInsights(ctx context.Context, entity string) (EntityInsights, error)
	ListLatestInsights(ctx context.Context) (Report, error)
}

// ReviewSource returns raw, source-shaped review payloads; field names vary by
// provider and are resolved by the normalizer.
type ReviewSource interface {
	FetchReviews(ctx context.Context, appID string, count int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
