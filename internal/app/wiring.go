package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"review_insights/internal/insights"
	"review_insights/internal/shared"
)

// NewEngine builds the insights engine from configuration. An empty
// taxonomy_path selects the built-in taxonomy.
func NewEngine(cfg shared.Config) (*insights.Engine, error) {
	tax := insights.DefaultTaxonomy()
	if cfg.TaxonomyPath != "" {
		t, err := insights.LoadTaxonomy(cfg.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("taxonomy %s: %w", cfg.TaxonomyPath, err)
		}
		tax = t
		log.Info().Str("path", cfg.TaxonomyPath).
			Int("drivers", len(t.Drivers)).Int("pain_points", len(t.PainPoints)).
			Msg("taxonomy loaded")
	}
	return insights.NewEngine(tax,
		insights.WithMinMentions(cfg.MinMentions),
		insights.WithMaxExamples(cfg.MaxExamples),
		insights.WithMaxRecommendations(cfg.MaxRecommendations),
		insights.WithOpportunities(cfg.Opportunities, cfg.MaxOpportunities),
	), nil
}

// NewConfiguredNormalizer applies configured field aliases over the defaults.
func NewConfiguredNormalizer(cfg shared.Config) *Normalizer {
	if len(cfg.FieldAliases) == 0 {
		return NewNormalizer()
	}
	return NewNormalizer(WithAliases(cfg.FieldAliases))
}
