package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"review_insights/internal/domain"
)

const namespace = "insights"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	NormalizedReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "normalized_reviews_total", Help: "Normalizer outcomes."},
		[]string{"outcome"}, // kept or a drop reason
	)
	Mentions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reported_mentions_total", Help: "Mentions behind reported drivers and pain points."},
		[]string{"kind", "category"},
	)
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "analysis_duration_seconds",
			Help:    "Per-entity analysis duration seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"entity"},
	)
)

// Serve starts a side metrics server on addr. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		NormalizedReviews, Mentions, AnalysisDuration,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveNormalize records kept records and drops by reason.
func ObserveNormalize(kept int, dropped map[string]int) {
	NormalizedReviews.WithLabelValues("kept").Add(float64(kept))
	for reason, n := range dropped {
		NormalizedReviews.WithLabelValues(reason).Add(float64(n))
	}
}

func ObserveMentions(kind, category string, n int) {
	Mentions.WithLabelValues(kind, category).Add(float64(n))
}

func ObserveAnalysis(entity string, dur time.Duration) {
	AnalysisDuration.WithLabelValues(entity).Observe(dur.Seconds())
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}

// Recorder adapts the package metrics to the app services' observer hook.
type Recorder struct{}

func (Recorder) Normalized(kept int, dropped map[string]int) { ObserveNormalize(kept, dropped) }

func (Recorder) Analyzed(entity string, dur time.Duration, ins domain.EntityInsights) {
	ObserveAnalysis(entity, dur)
	for _, d := range ins.Drivers {
		ObserveMentions("driver", d.Type, d.Mentions)
	}
	for _, p := range ins.PainPoints {
		ObserveMentions("pain_point", p.Type, p.Mentions)
	}
}
