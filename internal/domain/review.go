package domain

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUnknown  Sentiment = "unknown"
)

// NeutralConfidence is substituted when a source carries no usable sentiment score.
const NeutralConfidence = 0.5

// Review is the canonical record produced by the normalizer. Rating is nil when
// the source value was missing or outside 1..5.
type Review struct {
	ID         string     `json:"review_id"`
	Entity     string     `json:"entity_id"`
	Text       string     `json:"review_text"`
	Rating     *int       `json:"rating"`
	Sentiment  Sentiment  `json:"sentiment_label"`
	Confidence float64    `json:"sentiment_score"` // resolved to [0,1]
	Source     string     `json:"source,omitempty"`
	Date       *time.Time `json:"review_date,omitempty"`
}
