package domain

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Markers used in Recommendation.PainPointTiedTo for suggestions that are not
// tied to a single pain point.
const (
	TiedToGeneral     = "general"
	TiedToOpportunity = "opportunity"
)

type Example struct {
	Text      string    `json:"text"`
	Rating    *int      `json:"rating"`
	Sentiment Sentiment `json:"sentiment"`
}

type Driver struct {
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Strength      float64   `json:"strength"`
	Mentions      int       `json:"mentions"`
	EvidenceCount int       `json:"evidence_count"`
	Examples      []Example `json:"examples"`
}

type PainPoint struct {
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Severity      float64   `json:"severity"`
	Mentions      int       `json:"mentions"`
	EvidenceCount int       `json:"evidence_count"`
	Examples      []Example `json:"examples"`
}

type Recommendation struct {
	Title           string   `json:"title"`
	Priority        Priority `json:"priority"`
	Description     string   `json:"description"`
	ExpectedImpact  string   `json:"expected_impact"`
	Evidence        string   `json:"evidence"`
	PainPointTiedTo string   `json:"pain_point_tied_to"`
	Opportunity     bool     `json:"opportunity,omitempty"`
}

type Statistics struct {
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	PositivePct   float64 `json:"positive_pct"`
	NegativePct   float64 `json:"negative_pct"`
}

// EntityInsights is the per-entity output block. Slices are never nil so an
// entity without evidence serializes as [] rather than null.
type EntityInsights struct {
	Statistics      Statistics       `json:"statistics"`
	Drivers         []Driver         `json:"drivers"`
	PainPoints      []PainPoint      `json:"pain_points"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Report maps entity id to its insights. encoding/json writes map keys sorted,
// which keeps serialized reports byte-stable across runs.
type Report map[string]EntityInsights
