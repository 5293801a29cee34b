package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"review_insights/internal/domain"
)

// maxBatch keeps multi-row inserts under the placeholder limit.
const maxBatch = 500

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	for start := 0; start < len(rs); start += maxBatch {
		end := start + maxBatch
		if end > len(rs) {
			end = len(rs)
		}
		if err := r.upsertBatch(ctx, rs[start:end]); err != nil {
			return fmt.Errorf("upsert reviews [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func (r *Repo) upsertBatch(ctx context.Context, rs []domain.Review) error {
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*8) // 8 params per row
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.ID,
			rv.Entity,
			rv.Text,
			valInt(rv.Rating),
			string(rv.Sentiment),
			rv.Confidence,
			valStr(rv.Source),
			valTime(rv.Date),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// LogIngest records the outcome of one ingestion pass.
func (r *Repo) LogIngest(ctx context.Context, source string, total, kept int, reasons map[string]int) error {
	b, err := json.Marshal(reasons)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertIngestRunSQL, source, total, kept, total-kept, string(b))
	return err
}

func (r *Repo) ListEntities(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listEntitiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, entity string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var (
			rating sql.NullInt64
			label  string
			score  sql.NullFloat64
			source sql.NullString
			date   sql.NullTime
		)
		if err := rows.Scan(&rv.ID, &rv.Entity, &rv.Text, &rating, &label, &score, &source, &date); err != nil {
			return nil, err
		}
		if rating.Valid {
			n := int(rating.Int64)
			rv.Rating = &n
		}
		rv.Sentiment = domain.Sentiment(label)
		rv.Confidence = domain.NeutralConfidence
		if score.Valid {
			rv.Confidence = score.Float64
		}
		if source.Valid {
			rv.Source = source.String
		}
		if date.Valid {
			t := date.Time.UTC()
			rv.Date = &t
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) SaveInsights(ctx context.Context, runID, entity string, ins domain.EntityInsights) error {
	b, err := json.Marshal(ins)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertInsightSQL, runID, entity, string(b))
	return err
}

func (r *Repo) LatestInsights(ctx context.Context, entity string) (domain.EntityInsights, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, latestInsightSQL, entity).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EntityInsights{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.EntityInsights{}, err
	}
	var ins domain.EntityInsights
	if err := json.Unmarshal(payload, &ins); err != nil {
		return domain.EntityInsights{}, fmt.Errorf("decode insights for %s: %w", entity, err)
	}
	return ins, nil
}

func (r *Repo) ListLatestInsights(ctx context.Context) (domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, listLatestInsightsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := domain.Report{}
	for rows.Next() {
		var (
			entity  string
			payload []byte
		)
		if err := rows.Scan(&entity, &payload); err != nil {
			return nil, err
		}
		var ins domain.EntityInsights
		if err := json.Unmarshal(payload, &ins); err != nil {
			return nil, fmt.Errorf("decode insights for %s: %w", entity, err)
		}
		out[entity] = ins
	}
	return out, rows.Err()
}
