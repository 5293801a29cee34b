package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"review_insights/internal/domain"
	"review_insights/internal/insights"
)

type RunResult struct {
	RunID      string            `json:"run_id"`
	Report     domain.Report     `json:"report"`
	Comparison domain.Comparison `json:"comparison"`
	Stats      *NormalizeStats   `json:"normalize_stats,omitempty"`
}

// AnalysisService runs the engine over stored or supplied reviews. repo,
// store and cache are optional; nil disables the matching step.
type AnalysisService struct {
	eng     *insights.Engine
	norm    *Normalizer
	repo    domain.ReviewRepository
	store   domain.InsightStore
	cache   domain.Cache
	obs     Observer
	workers int
}

type AnalysisDeps struct {
	Repo     domain.ReviewRepository
	Store    domain.InsightStore
	Cache    domain.Cache
	Observer Observer
}

func NewAnalysisService(eng *insights.Engine, norm *Normalizer, deps AnalysisDeps, workers int) *AnalysisService {
	if norm == nil {
		norm = NewNormalizer()
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if workers < 1 {
		workers = 1
	}
	return &AnalysisService{
		eng: eng, norm: norm,
		repo: deps.Repo, store: deps.Store, cache: deps.Cache, obs: deps.Observer,
		workers: workers,
	}
}

// Run analyzes every entity in the review repository and persists the result
// under a fresh run id.
func (s *AnalysisService) Run(ctx context.Context) (RunResult, error) {
	if s.repo == nil {
		return RunResult{}, fmt.Errorf("analysis run: no review repository configured")
	}
	ents, err := s.repo.ListEntities(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("list entities: %w", err)
	}

	var mu sync.Mutex
	groups := make(map[string][]domain.Review, len(ents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, e := range ents {
		e := e // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			rs, err := s.repo.ListReviews(gctx, e)
			if err != nil {
				return fmt.Errorf("list reviews for %s: %w", e, err)
			}
			mu.Lock()
			groups[e] = rs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}
	return s.analyze(ctx, groups, true)
}

// RunReviews analyzes already-normalized reviews; persist stores the report
// when a store is configured.
func (s *AnalysisService) RunReviews(ctx context.Context, rs []domain.Review, persist bool) (RunResult, error) {
	groups, _ := insights.GroupByEntity(rs)
	return s.analyze(ctx, groups, persist)
}

// AnalyzeRaw normalizes raw records and analyzes them without persisting.
func (s *AnalysisService) AnalyzeRaw(ctx context.Context, raw []map[string]any) (RunResult, error) {
	rs, st := s.norm.Normalize(raw)
	s.obs.Normalized(st.Kept, st.Reasons)
	if st.Dropped > 0 {
		log.Warn().Int("dropped", st.Dropped).Interface("reasons", st.Reasons).Msg("dropped unusable records")
	}
	res, err := s.RunReviews(ctx, rs, false)
	res.Stats = &st
	return res, err
}

func (s *AnalysisService) analyze(ctx context.Context, groups map[string][]domain.Review, persist bool) (RunResult, error) {
	runID := uuid.NewString()
	report := make(domain.Report, len(groups))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for ent, rs := range groups {
		ent, rs := ent, rs // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			ins := s.eng.AnalyzeEntity(ent, rs)
			s.obs.Analyzed(ent, time.Since(start), ins)
			log.Debug().Str("run_id", runID).Str("entity", ent).
				Int("reviews", len(rs)).
				Int("drivers", len(ins.Drivers)).
				Int("pain_points", len(ins.PainPoints)).
				Int("recommendations", len(ins.Recommendations)).
				Msg("entity analyzed")
			mu.Lock()
			report[ent] = ins
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}

	if persist && s.store != nil {
		for _, ent := range sortedKeys(report) {
			if err := s.store.SaveInsights(ctx, runID, ent, report[ent]); err != nil {
				return RunResult{}, fmt.Errorf("save insights for %s: %w", ent, err)
			}
		}
		invalidate(ctx, s.cache)
	}

	log.Info().Str("run_id", runID).Int("entities", len(report)).Bool("persisted", persist && s.store != nil).Msg("analysis complete")
	return RunResult{
		RunID:      runID,
		Report:     report,
		Comparison: insights.Compare(groups, report),
	}, nil
}

func sortedKeys(r domain.Report) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
