package insights

import (
	"fmt"

	"review_insights/internal/domain"
)

const (
	DefaultMaxRecommendations = 3
	DefaultMaxOpportunities   = 2
	// minRecommendations triggers the general recommendation when not met.
	minRecommendations = 2
)

// RecommendPolicy tunes the synthesizer.
type RecommendPolicy struct {
	MaxRecommendations int  // pain points turned into recommendations
	Opportunities      bool // append suggestions for absent drivers
	MaxOpportunities   int
}

func DefaultRecommendPolicy() RecommendPolicy {
	return RecommendPolicy{
		MaxRecommendations: DefaultMaxRecommendations,
		Opportunities:      true,
		MaxOpportunities:   DefaultMaxOpportunities,
	}
}

// PriorityFor grades a pain point by severity and volume.
func PriorityFor(severity float64, mentions int) domain.Priority {
	if (severity > 0.3 && mentions > 50) || severity > 0.25 || mentions > 30 {
		return domain.PriorityHigh
	}
	return domain.PriorityMedium
}

// Recommend turns ranked pain points into recommendations. Evidence-tied
// entries come first in pain point order, then the general fallback, then
// opportunities for driver categories the entity is not praised for.
func Recommend(tax Taxonomy, drivers []domain.Driver, pains []domain.PainPoint, p RecommendPolicy) []domain.Recommendation {
	byID := make(map[string]Category, len(tax.PainPoints))
	for _, c := range tax.PainPoints {
		byID[c.ID] = c
	}

	out := make([]domain.Recommendation, 0, p.MaxRecommendations+1+p.MaxOpportunities)
	for i, pp := range pains {
		if i >= p.MaxRecommendations {
			break
		}
		tpl := fallbackTemplate
		if c, ok := byID[pp.Type]; ok {
			tpl = c.template()
		}
		out = append(out, domain.Recommendation{
			Title:           tpl.Title,
			Priority:        PriorityFor(pp.Severity, pp.Mentions),
			Description:     tpl.Description,
			ExpectedImpact:  tpl.ExpectedImpact,
			Evidence:        fmt.Sprintf("%d mentions in negative reviews", pp.Mentions),
			PainPointTiedTo: pp.Type,
		})
	}

	if len(out) < minRecommendations {
		g := tax.general()
		out = append(out, domain.Recommendation{
			Title:           g.Title,
			Priority:        domain.PriorityMedium,
			Description:     g.Description,
			ExpectedImpact:  g.ExpectedImpact,
			Evidence:        fmt.Sprintf("%d pain points identified", len(pains)),
			PainPointTiedTo: domain.TiedToGeneral,
		})
	}

	if p.Opportunities {
		out = append(out, opportunities(tax.Drivers, drivers, p.MaxOpportunities)...)
	}
	return out
}

func opportunities(cats []Category, drivers []domain.Driver, limit int) []domain.Recommendation {
	present := make(map[string]bool, len(drivers))
	for _, d := range drivers {
		present[d.Type] = true
	}
	var out []domain.Recommendation
	for _, c := range cats {
		if len(out) >= limit {
			break
		}
		if present[c.ID] || c.Recommendation == nil {
			continue
		}
		out = append(out, domain.Recommendation{
			Title:           c.Recommendation.Title,
			Priority:        domain.PriorityLow,
			Description:     c.Recommendation.Description,
			ExpectedImpact:  c.Recommendation.ExpectedImpact,
			Evidence:        fmt.Sprintf("%s not identified as a driver", c.ID),
			PainPointTiedTo: domain.TiedToOpportunity,
			Opportunity:     true,
		})
	}
	return out
}
