package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"review_insights/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors are exported
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveNormalize(3, map[string]int{"missing_text": 1})
	observability.ObserveMentions("pain_point", "crash", 6)
	observability.ObserveAnalysis("CBE", 5*time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"insights_http_requests_total",
		`insights_normalized_reviews_total{outcome="missing_text"}`,
		`insights_reported_mentions_total{category="crash",kind="pain_point"}`,
		"insights_analysis_duration_seconds_bucket",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}

func TestLabelErr(t *testing.T) {
	if observability.LabelErr(nil) != "none" {
		t.Fatal("nil error label")
	}
	if got := observability.LabelErr(io.EOF); got != "*errors.errorString" {
		t.Fatalf("got %s", got)
	}
}
