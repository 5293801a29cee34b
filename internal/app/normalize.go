package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"review_insights/internal/domain"
)

/********** alias registry (single source of truth) **********/

// DefaultAliases maps each canonical field to the source keys tried in order.
// Dot paths address nested objects.
var DefaultAliases = map[string][]string{
	"id":         {"review_id", "id", "reviewId"},
	"entity":     {"bank_code", "bank", "bank_name", "entity", "entity_id", "app"},
	"text":       {"review_text", "review", "text", "content", "body", "comment"},
	"rating":     {"rating", "score", "stars", "rating.value"},
	"sentiment":  {"sentiment_label", "sentiment", "label"},
	"confidence": {"sentiment_score", "confidence", "sentiment_confidence"},
	"source":     {"source", "platform"},
	"date":       {"review_date", "date", "at"},
}

// Drop reasons reported in NormalizeStats.
const (
	DropMissingEntity = "missing_entity"
	DropMissingText   = "missing_text"
	DropUnusable      = "unusable"
)

type NormalizeStats struct {
	Total   int            `json:"total"`
	Kept    int            `json:"kept"`
	Dropped int            `json:"dropped"`
	Reasons map[string]int `json:"reasons"`
}

type Normalizer struct {
	aliases map[string][]string
}

type NormalizerOption func(*Normalizer)

// WithAliases replaces the source keys for the given canonical fields. Fields
// not named keep their defaults.
func WithAliases(a map[string][]string) NormalizerOption {
	return func(n *Normalizer) {
		for k, v := range a {
			if len(v) > 0 {
				n.aliases[k] = append([]string(nil), v...)
			}
		}
	}
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{aliases: make(map[string][]string, len(DefaultAliases))}
	for k, v := range DefaultAliases {
		n.aliases[k] = v
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize resolves raw records to canonical reviews. It never fails:
// records that cannot be used are dropped and counted by reason.
func (n *Normalizer) Normalize(raw []map[string]any) ([]domain.Review, NormalizeStats) {
	return n.normalize("", raw)
}

// NormalizeEntity is Normalize with every record attributed to entity, for
// sources whose payloads do not name the entity themselves.
func (n *Normalizer) NormalizeEntity(entity string, raw []map[string]any) ([]domain.Review, NormalizeStats) {
	return n.normalize(strings.TrimSpace(entity), raw)
}

func (n *Normalizer) normalize(entity string, raw []map[string]any) ([]domain.Review, NormalizeStats) {
	st := NormalizeStats{Total: len(raw), Reasons: map[string]int{}}
	out := make([]domain.Review, 0, len(raw))
	for _, m := range raw {
		r, reason := n.one(m, entity)
		if reason != "" {
			st.Dropped++
			st.Reasons[reason]++
			continue
		}
		out = append(out, r)
	}
	st.Kept = len(out)
	return out, st
}

// NormalizeOne resolves a single record; reason is non-empty when dropped.
func (n *Normalizer) NormalizeOne(m map[string]any) (domain.Review, string) {
	return n.one(m, "")
}

func (n *Normalizer) one(m map[string]any, entity string) (domain.Review, string) {
	if entity == "" {
		entity = strings.TrimSpace(n.str(m, "entity"))
	}
	if entity == "" {
		return domain.Review{}, DropMissingEntity
	}
	text := strings.TrimSpace(n.str(m, "text"))
	if text == "" {
		return domain.Review{}, DropMissingText
	}

	r := domain.Review{
		Entity:     entity,
		Text:       text,
		Rating:     parseRating(n.value(m, "rating")),
		Sentiment:  parseSentiment(n.str(m, "sentiment")),
		Confidence: parseConfidence(n.value(m, "confidence")),
		Source:     strings.TrimSpace(n.str(m, "source")),
		Date:       parseDate(n.value(m, "date")),
	}
	if r.Rating == nil && r.Sentiment == domain.SentimentUnknown {
		return domain.Review{}, DropUnusable
	}
	r.ID = strings.TrimSpace(n.str(m, "id"))
	if r.ID == "" {
		r.ID = syntheticID(r)
	}
	return r, ""
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	if v, ok := m[path]; ok {
		return v
	}
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// value returns the first scalar, non-blank value among the field's aliases.
func (n *Normalizer) value(m map[string]any, field string) any {
	for _, p := range n.aliases[field] {
		v := lookupAny(m, p)
		switch x := v.(type) {
		case nil, map[string]any, []any:
			continue // absent or not a scalar; try deeper paths
		case string:
			if strings.TrimSpace(x) == "" {
				continue
			}
		}
		return v
	}
	return nil
}

func (n *Normalizer) str(m map[string]any, field string) string {
	switch v := n.value(m, field).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// toFloat: number from float64/int/json.Number/string like "4,0".
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// parseRating accepts integral values in 1..5 only.
func parseRating(v any) *int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || f != math.Trunc(f) || f < 1 || f > 5 {
		return nil
	}
	r := int(f)
	return &r
}

func parseConfidence(v any) float64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || f < 0 || f > 1 {
		return domain.NeutralConfidence
	}
	return f
}

func parseSentiment(s string) domain.Sentiment {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "pos"):
		return domain.SentimentPositive
	case strings.HasPrefix(s, "neg"):
		return domain.SentimentNegative
	case strings.HasPrefix(s, "neu"):
		return domain.SentimentNeutral
	}
	return domain.SentimentUnknown
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(v any) *time.Time {
	switch x := v.(type) {
	case time.Time:
		t := x.UTC()
		return &t
	case string:
		s := strings.TrimSpace(x)
		for _, l := range dateLayouts {
			if t, err := time.Parse(l, s); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

// syntheticID gives records without a source id a stable identity so
// re-ingesting the same file upserts instead of duplicating.
func syntheticID(r domain.Review) string {
	rating := ""
	if r.Rating != nil {
		rating = strconv.Itoa(*r.Rating)
	}
	date := ""
	if r.Date != nil {
		date = r.Date.Format(time.RFC3339)
	}
	sum := sha1.Sum([]byte(strings.Join([]string{r.Entity, r.Text, rating, date}, "|")))
	return hex.EncodeToString(sum[:])
}
