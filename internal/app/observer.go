package app

import (
	"time"

	"review_insights/internal/domain"
)

// Observer receives pipeline outcomes for metrics.
type Observer interface {
	Normalized(kept int, dropped map[string]int)
	Analyzed(entity string, dur time.Duration, ins domain.EntityInsights)
}

type nopObserver struct{}

func (nopObserver) Normalized(int, map[string]int)                        {}
func (nopObserver) Analyzed(string, time.Duration, domain.EntityInsights) {}

// Cache keys share the insights: prefix so a single prefix delete drops
// every cached read after a run.
const (
	cachePrefix      = "insights:"
	cacheKeyAll      = cachePrefix + "all"
	cacheKeyCompare  = cachePrefix + "comparison"
	cacheKeyEntityFn = cachePrefix + "entity:"
)

func entityKey(entity string) string { return cacheKeyEntityFn + entity }
