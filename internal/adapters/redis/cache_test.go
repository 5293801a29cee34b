package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "review_insights/internal/adapters/redis"
	"review_insights/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var miss domain.EntityInsights
	ok, err := c.Get(ctx, "insights:X", &miss)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := domain.EntityInsights{
		Statistics: domain.Statistics{TotalReviews: 3, AverageRating: 4.5},
		Drivers:    []domain.Driver{{Type: "fast", Strength: 0.9, Mentions: 7, Examples: []domain.Example{}}},
		PainPoints: []domain.PainPoint{},
	}
	if err := c.Set(ctx, "insights:X", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("insights:X"); ttl.Seconds() != 60 {
		t.Fatalf("ttl: %v", ttl)
	}

	var out domain.EntityInsights
	ok, err = c.Get(ctx, "insights:X", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Drivers[0].Type != "fast" || out.Statistics.AverageRating != 4.5 {
		t.Fatalf("unexpected value %+v", out)
	}
}

func TestCache_DelPrefix(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	for _, k := range []string{"insights:A", "insights:B", "other"} {
		if err := c.Set(ctx, k, 1, 60); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Del(ctx, "insights:*"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("insights:A") || mr.Exists("insights:B") {
		t.Fatal("prefixed keys should be gone")
	}
	if !mr.Exists("other") {
		t.Fatal("unrelated key removed")
	}
	if err := c.Del(ctx, "other"); err != nil || mr.Exists("other") {
		t.Fatalf("single del failed: %v", err)
	}
}
