package reviewsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"review_insights/internal/adapters/observability"
)

const (
	pageSize   = 100
	maxRetries = 3
	maxPages   = 1000
)

var (
	ErrNotFound     = errors.New("reviewsource: not found")
	ErrUnauthorized = errors.New("reviewsource: unauthorized")
	ErrForbidden    = errors.New("reviewsource: forbidden")
)

// Client pages reviews out of an app-store style review API.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter

	initialInterval time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithInitialBackoff sets the first retry delay.
func WithInitialBackoff(d time.Duration) Option { return func(c *Client) { c.initialInterval = d } }

func New(base, key string, rps float64, opts ...Option) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c := &Client{
		base:            strings.TrimRight(base, "/"),
		hc:              &http.Client{Timeout: 20 * time.Second},
		key:             key,
		rl:              rate.NewLimiter(rate.Limit(rps), burst),
		initialInterval: 200 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type page struct {
	Reviews    []map[string]any `json:"reviews"`
	NextCursor string           `json:"next_cursor"`
}

// FetchReviews returns up to count raw reviews for appID, following cursors.
// count <= 0 fetches every page.
func (c *Client) FetchReviews(ctx context.Context, appID string, count int) ([]map[string]any, error) {
	var out []map[string]any
	cursor := ""
	for i := 0; i < maxPages; i++ {
		limit := pageSize
		if count > 0 && count-len(out) < limit {
			limit = count - len(out)
		}
		p, err := c.fetchPage(ctx, appID, limit, cursor)
		if err != nil {
			return out, err
		}
		out = append(out, p.Reviews...)
		if p.NextCursor == "" || len(p.Reviews) == 0 || (count > 0 && len(out) >= count) {
			break
		}
		cursor = p.NextCursor
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, appID string, limit int, cursor string) (page, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	candidates := []string{
		fmt.Sprintf("%s/apps/%s/reviews?%s", c.base, url.PathEscape(appID), q.Encode()), // preferred
	}
	if cursor == "" {
		legacy := url.Values{"app": {appID}, "count": {strconv.Itoa(limit)}}
		candidates = append(candidates, fmt.Sprintf("%s/reviews?%s", c.base, legacy.Encode()))
	}
	var p page
	return p, c.getFirst(ctx, candidates, &p)
}

func (c *Client) getFirst(ctx context.Context, urls []string, out *page) error {
	var last error
	for _, u := range urls {
		if err := c.get(ctx, u, out); err != nil {
			if errors.Is(err, ErrNotFound) {
				last = err
				continue // try next pattern
			}
			return err
		}
		return nil
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// get performs a GET with client-side rate limiting and retries on 429 and
// transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, u string, out *page) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	reqID := uuid.NewString()
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "review-insights/1.0")
		req.Header.Set("X-Request-ID", reqID)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("review_source", "reviews", 0, time.Since(start))
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()
		observability.ObserveExternal("review_source", "reviews", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if err := decodePage(body, out); err != nil {
				return backoff.Permanent(err)
			}
			return nil
		case http.StatusNoContent:
			return nil
		case http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case http.StatusUnauthorized:
			return backoff.Permanent(ErrUnauthorized)
		case http.StatusForbidden:
			return backoff.Permanent(ErrForbidden)
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if wait := retryAfter(resp); wait > 0 && !sleepCtx(ctx, wait) {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("remote %d", resp.StatusCode)
		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return backoff.Permanent(fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
		}
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialInterval
	eb.MaxElapsedTime = 30 * time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx)
	return backoff.RetryNotify(op, b, func(err error, d time.Duration) {
		log.Warn().Err(err).Str("url", u).Str("request_id", reqID).Dur("retry_in", d).Msg("review source retry")
	})
}

// decodePage accepts the paged envelope or a bare array.
func decodePage(body []byte, out *page) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if trimmed[0] == '[' {
		return dec.Decode(&out.Reviews)
	}
	return dec.Decode(out)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
