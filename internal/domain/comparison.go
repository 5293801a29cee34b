package domain

type TrendPoint struct {
	Month    string `json:"month"` // YYYY-MM
	Total    int    `json:"total"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
}

type ComparisonRow struct {
	Entity          string       `json:"entity_id"`
	TotalReviews    int          `json:"total_reviews"`
	RatedReviews    int          `json:"rated_reviews"`
	AverageRating   float64      `json:"average_rating"`
	PositivePct     float64      `json:"positive_pct"`
	NegativePct     float64      `json:"negative_pct"`
	NeutralPct      float64      `json:"neutral_pct"`
	RatingHistogram map[int]int  `json:"rating_histogram"` // keys 1..5, always present
	TopDriver       string       `json:"top_driver"`
	TopPainPoint    string       `json:"top_pain_point"`
	Trend           []TrendPoint `json:"trend"`
}

// MetricLeader names the best and worst entity for one comparison metric.
type MetricLeader struct {
	Metric     string  `json:"metric"`
	Best       string  `json:"best"`
	Worst      string  `json:"worst"`
	BestValue  float64 `json:"best_value"`
	WorstValue float64 `json:"worst_value"`
}

type Comparison struct {
	Rows    []ComparisonRow `json:"rows"`
	Leaders []MetricLeader  `json:"leaders"`
}
