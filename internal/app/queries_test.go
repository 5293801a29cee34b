package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"review_insights/internal/app"
	"review_insights/internal/domain"
)

func TestGetInsights_CacheMissThenHit(t *testing.T) {
	repo := newFakeRepo()
	repo.latest["CBE"] = domain.EntityInsights{Statistics: domain.Statistics{TotalReviews: 4}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	got, err := q.GetInsights(context.Background(), "CBE")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.Statistics.TotalReviews != 4 {
		t.Fatalf("unexpected insights: %+v", got)
	}

	// Mutate store to ensure second read indeed comes from cache
	repo.latest["CBE"] = domain.EntityInsights{Statistics: domain.Statistics{TotalReviews: 99}}

	got, err = q.GetInsights(context.Background(), "CBE")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.Statistics.TotalReviews != 4 {
		t.Fatalf("expected cached value, got %+v", got)
	}
}

func TestGetInsights_NotFound(t *testing.T) {
	repo := newFakeRepo()
	q := app.NewQueryService(repo, repo, nil, time.Minute)
	if _, err := q.GetInsights(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGetComparison(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "CBE", "good", 5, domain.SentimentPositive, 2)
	seed(repo, "BOA", "bad", 1, domain.SentimentNegative, 1)
	repo.latest["CBE"] = domain.EntityInsights{Drivers: []domain.Driver{{Type: "fast"}}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, repo, cache, time.Minute)

	cmp, err := q.GetComparison(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cmp.Rows) != 2 || cmp.Rows[0].Entity != "BOA" || cmp.Rows[1].TopDriver != "fast" {
		t.Fatalf("rows: %+v", cmp.Rows)
	}
	if cmp.Rows[0].TopDriver != "N/A" {
		t.Fatalf("missing report should read N/A, got %q", cmp.Rows[0].TopDriver)
	}
	if _, ok := cache.store["insights:comparison"]; !ok {
		t.Fatal("comparison should be cached")
	}
}
