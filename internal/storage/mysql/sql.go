package mysql

const insertReviewsPrefix = "INSERT INTO reviews\n  (review_id, entity_id, review_text, rating, sentiment_label, sentiment_score, source, review_date)\nVALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  entity_id       = VALUES(entity_id),\n" +
	"  review_text     = VALUES(review_text),\n" +
	"  rating          = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  sentiment_label = VALUES(sentiment_label),\n" +
	"  sentiment_score = COALESCE(VALUES(sentiment_score), reviews.sentiment_score),\n" +
	"  source          = COALESCE(VALUES(source), reviews.source),\n" +
	"  review_date     = COALESCE(VALUES(review_date), reviews.review_date),\n" +
	"  updated_at      = CURRENT_TIMESTAMP\n"

const insertIngestRunSQL = `
INSERT INTO ingest_runs (source, total, kept, dropped, reasons)
VALUES (?, ?, ?, ?, ?)
`

const upsertInsightSQL = `
INSERT INTO insight_reports (run_id, entity_id, payload)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  payload    = VALUES(payload),
  created_at = CURRENT_TIMESTAMP(6)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listEntitiesSQL = `
SELECT DISTINCT entity_id
FROM reviews
ORDER BY entity_id
`

// Insertion order is kept via the surrogate id so scans see a stable sequence.
const listReviewsSQL = `
SELECT
  review_id,
  entity_id,
  review_text,
  rating,
  sentiment_label,
  sentiment_score,
  source,
  review_date
FROM reviews
WHERE entity_id = ?
ORDER BY id
`

const latestInsightSQL = `
SELECT payload
FROM insight_reports
WHERE entity_id = ?
ORDER BY id DESC
LIMIT 1
`

// Latest report per entity is the one with the highest id.
const listLatestInsightsSQL = `
SELECT r.entity_id, r.payload
FROM insight_reports r
JOIN (
  SELECT entity_id, MAX(id) AS id
  FROM insight_reports
  GROUP BY entity_id
) latest ON latest.id = r.id
ORDER BY r.entity_id
`
