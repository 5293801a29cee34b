package app_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"review_insights/internal/domain"
)

// ---- fakes ----

type ingestLog struct {
	source      string
	total, kept int
	reasons     map[string]int
}

type fakeRepo struct {
	mu      sync.Mutex
	reviews map[string][]domain.Review
	saved   map[string]map[string]domain.EntityInsights // run -> entity -> insights
	latest  domain.Report
	logs    []ingestLog
	listErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: map[string][]domain.Review{}, saved: map[string]map[string]domain.EntityInsights{}, latest: domain.Report{}}
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rs {
		f.reviews[r.Entity] = append(f.reviews[r.Entity], r)
	}
	return nil
}

func (f *fakeRepo) ListEntities(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.reviews))
	for e := range f.reviews {
		out = append(out, e)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, entity string) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Review(nil), f.reviews[entity]...), nil
}

func (f *fakeRepo) LogIngest(ctx context.Context, source string, total, kept int, reasons map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, ingestLog{source: source, total: total, kept: kept, reasons: reasons})
	return nil
}

func (f *fakeRepo) SaveInsights(ctx context.Context, runID, entity string, ins domain.EntityInsights) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved[runID] == nil {
		f.saved[runID] = map[string]domain.EntityInsights{}
	}
	f.saved[runID][entity] = ins
	f.latest[entity] = ins
	return nil
}

func (f *fakeRepo) LatestInsights(ctx context.Context, entity string) (domain.EntityInsights, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ins, ok := f.latest[entity]
	if !ok {
		return domain.EntityInsights{}, domain.ErrNotFound
	}
	return ins, nil
}

func (f *fakeRepo) ListLatestInsights(ctx context.Context) (domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := domain.Report{}
	for k, v := range f.latest {
		out[k] = v
	}
	return out, nil
}

// fakeCache stores JSON like the redis adapter so cached values never alias
// the caller's.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	if strings.HasSuffix(key, "*") {
		prefix := strings.TrimSuffix(key, "*")
		for k := range c.store {
			if strings.HasPrefix(k, prefix) {
				delete(c.store, k)
			}
		}
		return nil
	}
	delete(c.store, key)
	return nil
}

type fakeSource struct {
	raw []map[string]any
	err error
}

func (s *fakeSource) FetchReviews(ctx context.Context, appID string, count int) ([]map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	if count > 0 && count < len(s.raw) {
		return s.raw[:count], nil
	}
	return s.raw, nil
}

func ptr[T any](v T) *T { return &v }
