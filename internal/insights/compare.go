package insights

import (
	"sort"

	"review_insights/internal/domain"
)

// NotAvailable fills top driver / pain point columns with no data.
const NotAvailable = "N/A"

// Summarize computes the per-entity comparison row. Ratings that are absent
// are left out of the mean; percentages divide by the full row count.
func Summarize(entity string, rs []domain.Review) domain.ComparisonRow {
	row := domain.ComparisonRow{
		Entity:          entity,
		TotalReviews:    len(rs),
		RatingHistogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		TopDriver:       NotAvailable,
		TopPainPoint:    NotAvailable,
		Trend:           []domain.TrendPoint{},
	}
	if len(rs) == 0 {
		return row
	}

	var sum, pos, neg, neu int
	months := map[string]*domain.TrendPoint{}
	for _, r := range rs {
		if r.Rating != nil && *r.Rating >= 1 && *r.Rating <= 5 {
			sum += *r.Rating
			row.RatedReviews++
			row.RatingHistogram[*r.Rating]++
		}
		switch r.Sentiment {
		case domain.SentimentPositive:
			pos++
		case domain.SentimentNegative:
			neg++
		case domain.SentimentNeutral:
			neu++
		}
		if r.Date != nil {
			key := r.Date.UTC().Format("2006-01")
			tp, ok := months[key]
			if !ok {
				tp = &domain.TrendPoint{Month: key}
				months[key] = tp
			}
			tp.Total++
			switch r.Sentiment {
			case domain.SentimentPositive:
				tp.Positive++
			case domain.SentimentNegative:
				tp.Negative++
			case domain.SentimentNeutral:
				tp.Neutral++
			}
		}
	}
	if row.RatedReviews > 0 {
		row.AverageRating = float64(sum) / float64(row.RatedReviews)
	}
	n := float64(len(rs))
	row.PositivePct = float64(pos) / n * 100
	row.NegativePct = float64(neg) / n * 100
	row.NeutralPct = float64(neu) / n * 100

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		row.Trend = append(row.Trend, *months[k])
	}
	return row
}

// StatisticsOf projects the comparison row onto the insight statistics block.
func StatisticsOf(row domain.ComparisonRow) domain.Statistics {
	return domain.Statistics{
		TotalReviews:  row.TotalReviews,
		AverageRating: row.AverageRating,
		PositivePct:   row.PositivePct,
		NegativePct:   row.NegativePct,
	}
}

// Compare builds one row per entity, in sorted entity order, and the
// best/worst summary per metric. report may be nil; when present it supplies
// the top driver and pain point columns.
func Compare(byEntity map[string][]domain.Review, report domain.Report) domain.Comparison {
	entities := make([]string, 0, len(byEntity))
	for e := range byEntity {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	rows := make([]domain.ComparisonRow, 0, len(entities))
	for _, e := range entities {
		row := Summarize(e, byEntity[e])
		if ins, ok := report[e]; ok {
			if len(ins.Drivers) > 0 {
				row.TopDriver = ins.Drivers[0].Type
			}
			if len(ins.PainPoints) > 0 {
				row.TopPainPoint = ins.PainPoints[0].Type
			}
		}
		rows = append(rows, row)
	}
	return domain.Comparison{Rows: rows, Leaders: Leaders(rows)}
}

type metric struct {
	name        string
	value       func(domain.ComparisonRow) float64
	lowerBetter bool
}

var metrics = []metric{
	{name: "average_rating", value: func(r domain.ComparisonRow) float64 { return r.AverageRating }},
	{name: "positive_pct", value: func(r domain.ComparisonRow) float64 { return r.PositivePct }},
	{name: "negative_pct", value: func(r domain.ComparisonRow) float64 { return r.NegativePct }, lowerBetter: true},
	{name: "total_reviews", value: func(r domain.ComparisonRow) float64 { return float64(r.TotalReviews) }},
}

// Leaders picks best and worst entity per metric by simple max/min. Ties go
// to the row that comes first.
func Leaders(rows []domain.ComparisonRow) []domain.MetricLeader {
	if len(rows) == 0 {
		return []domain.MetricLeader{}
	}
	out := make([]domain.MetricLeader, 0, len(metrics))
	for _, m := range metrics {
		hi, lo := 0, 0
		for i := 1; i < len(rows); i++ {
			v := m.value(rows[i])
			if v > m.value(rows[hi]) {
				hi = i
			}
			if v < m.value(rows[lo]) {
				lo = i
			}
		}
		best, worst := hi, lo
		if m.lowerBetter {
			best, worst = lo, hi
		}
		out = append(out, domain.MetricLeader{
			Metric:     m.name,
			Best:       rows[best].Entity,
			Worst:      rows[worst].Entity,
			BestValue:  m.value(rows[best]),
			WorstValue: m.value(rows[worst]),
		})
	}
	return out
}
