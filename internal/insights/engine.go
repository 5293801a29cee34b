package insights

import (
	"sort"

	"review_insights/internal/domain"
)

const (
	DefaultMinMentions = 5
	DefaultMaxExamples = 3
)

// Engine runs scan, aggregate and synthesis for a fixed taxonomy. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	tax         Taxonomy
	minMentions int
	maxExamples int
	policy      RecommendPolicy
}

type Option func(*Engine)

func WithMinMentions(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.minMentions = n
		}
	}
}

func WithMaxExamples(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxExamples = n
		}
	}
}

func WithMaxRecommendations(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.policy.MaxRecommendations = n
		}
	}
}

func WithOpportunities(enabled bool, limit int) Option {
	return func(e *Engine) {
		e.policy.Opportunities = enabled
		if limit >= 0 {
			e.policy.MaxOpportunities = limit
		}
	}
}

// NewEngine copies tax so later changes by the caller are not observed.
func NewEngine(tax Taxonomy, opts ...Option) *Engine {
	e := &Engine{
		tax:         tax.Clone(),
		minMentions: DefaultMinMentions,
		maxExamples: DefaultMaxExamples,
		policy:      DefaultRecommendPolicy(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Taxonomy() Taxonomy { return e.tax.Clone() }

func (e *Engine) MinMentions() int { return e.minMentions }

// AnalyzeEntity computes the insight block for one entity's reviews. Reviews
// are taken as given; callers group them first.
func (e *Engine) AnalyzeEntity(entity string, rs []domain.Review) domain.EntityInsights {
	pos := Subset(KindDriver, rs)
	neg := Subset(KindPainPoint, rs)

	drivers := toDrivers(AggregateMentions(e.tax.Drivers, Scan(KindDriver, e.tax.Drivers, pos), len(pos), e.minMentions, e.maxExamples))
	pains := toPainPoints(AggregateMentions(e.tax.PainPoints, Scan(KindPainPoint, e.tax.PainPoints, neg), len(neg), e.minMentions, e.maxExamples))

	return domain.EntityInsights{
		Statistics:      StatisticsOf(Summarize(entity, rs)),
		Drivers:         drivers,
		PainPoints:      pains,
		Recommendations: Recommend(e.tax, drivers, pains, e.policy),
	}
}

// Analyze groups reviews by entity and analyzes each group.
func (e *Engine) Analyze(rs []domain.Review) domain.Report {
	groups, _ := GroupByEntity(rs)
	out := make(domain.Report, len(groups))
	for ent, g := range groups {
		out[ent] = e.AnalyzeEntity(ent, g)
	}
	return out
}

// GroupByEntity buckets reviews by entity, preserving input order within each
// bucket, and returns the entity ids sorted.
func GroupByEntity(rs []domain.Review) (map[string][]domain.Review, []string) {
	groups := map[string][]domain.Review{}
	for _, r := range rs {
		groups[r.Entity] = append(groups[r.Entity], r)
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return groups, ids
}
