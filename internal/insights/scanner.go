package insights

import (
	"strings"

	"review_insights/internal/domain"
)

// Kind selects which half of the taxonomy a scan runs against.
type Kind int

const (
	KindDriver Kind = iota
	KindPainPoint
)

func (k Kind) String() string {
	if k == KindPainPoint {
		return "pain_point"
	}
	return "driver"
}

const (
	// neutralRating stands in for an absent rating when weighting.
	neutralRating = 3
	// ExampleMaxRunes caps example text length.
	ExampleMaxRunes = 100
)

// Mention is one review matching one category. A review contributes at most
// one mention per category no matter how many keywords it contains.
type Mention struct {
	Category string
	ReviewID string
	Weight   float64
	Example  domain.Example
}

// IsPositive selects the driver subset.
func IsPositive(r domain.Review) bool {
	return (r.Rating != nil && *r.Rating >= 4) || r.Sentiment == domain.SentimentPositive
}

// IsNegative selects the pain point subset.
func IsNegative(r domain.Review) bool {
	return (r.Rating != nil && *r.Rating <= 2) || r.Sentiment == domain.SentimentNegative
}

// Weight scores a single mention in [0,1]. Drivers favour high ratings and
// confident predictions; pain points favour the opposite.
func Weight(k Kind, r domain.Review) float64 {
	rating := neutralRating
	if r.Rating != nil {
		rating = *r.Rating
	}
	rn := clamp01(float64(rating) / 5)
	conf := clamp01(r.Confidence)
	if k == KindPainPoint {
		return (1-rn)*0.5 + (1-conf)*0.5
	}
	return rn*0.5 + conf*0.5
}

// Subset filters reviews to the ones eligible for k, preserving order.
func Subset(k Kind, rs []domain.Review) []domain.Review {
	pick := IsPositive
	if k == KindPainPoint {
		pick = IsNegative
	}
	out := make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		if pick(r) {
			out = append(out, r)
		}
	}
	return out
}

// Scan matches every review against every category. Output is ordered by
// review, then by taxonomy order. Reviews are expected to be pre-filtered
// with Subset.
func Scan(k Kind, cats []Category, rs []domain.Review) []Mention {
	var out []Mention
	for _, r := range rs {
		text := strings.ToLower(r.Text)
		if text == "" {
			continue
		}
		w := Weight(k, r)
		for _, c := range cats {
			if !c.Matches(text) {
				continue
			}
			out = append(out, Mention{
				Category: c.ID,
				ReviewID: r.ID,
				Weight:   w,
				Example: domain.Example{
					Text:      Truncate(r.Text, ExampleMaxRunes),
					Rating:    r.Rating,
					Sentiment: r.Sentiment,
				},
			})
		}
	}
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
