package insights

import (
	"sort"

	"review_insights/internal/domain"
)

// Aggregate is the per-category rollup of mentions.
type Aggregate struct {
	Category Category
	Mentions int
	Score    float64 // mean mention weight
	Evidence int     // size of the subset the mentions were drawn from
	Examples []domain.Example
}

// AggregateMentions groups mentions by category, drops categories under
// minMentions and orders the rest by score, highest first. Equal scores keep
// taxonomy order. evidence is the size of the eligible subset that was scanned.
func AggregateMentions(cats []Category, ms []Mention, evidence, minMentions, maxExamples int) []Aggregate {
	idx := make(map[string]int, len(cats))
	acc := make([]Aggregate, len(cats))
	sums := make([]float64, len(cats))
	for i, c := range cats {
		idx[c.ID] = i
		acc[i].Category = c
	}
	for _, m := range ms {
		i, ok := idx[m.Category]
		if !ok {
			continue
		}
		acc[i].Mentions++
		sums[i] += m.Weight
		if len(acc[i].Examples) < maxExamples {
			acc[i].Examples = append(acc[i].Examples, m.Example)
		}
	}

	out := make([]Aggregate, 0, len(acc))
	for i, a := range acc {
		if a.Mentions == 0 || a.Mentions < minMentions {
			continue
		}
		a.Score = sums[i] / float64(a.Mentions)
		a.Evidence = evidence
		if a.Examples == nil {
			a.Examples = []domain.Example{}
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func toDrivers(as []Aggregate) []domain.Driver {
	out := make([]domain.Driver, 0, len(as))
	for _, a := range as {
		out = append(out, domain.Driver{
			Type:          a.Category.ID,
			Description:   a.Category.Label(),
			Strength:      a.Score,
			Mentions:      a.Mentions,
			EvidenceCount: a.Evidence,
			Examples:      a.Examples,
		})
	}
	return out
}

func toPainPoints(as []Aggregate) []domain.PainPoint {
	out := make([]domain.PainPoint, 0, len(as))
	for _, a := range as {
		out = append(out, domain.PainPoint{
			Type:          a.Category.ID,
			Description:   a.Category.Label(),
			Severity:      a.Score,
			Mentions:      a.Mentions,
			EvidenceCount: a.Evidence,
			Examples:      a.Examples,
		})
	}
	return out
}
