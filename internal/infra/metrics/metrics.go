// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(newsFetchTotal, newsFetchDuration, newsArticlesSkippedTotal)
}

// Results recorded by ObserveNewsFetch.
const (
	ResultOK               = "ok"
	ResultEmpty            = "empty"
	ResultTimeout          = "timeout"
	ResultUnavailable      = "unavailable"
	ResultUnexpectedFormat = "unexpected_format"
	ResultError            = "error"
)

var (
	newsFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_fetch_total",
			Help: "News pipeline invocations by result.",
		},
		[]string{"result"},
	)

	newsFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_fetch_duration_seconds",
			Help:    "Upstream news fetch latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	newsArticlesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "news_articles_skipped_total",
			Help: "Upstream articles dropped because they could not be decoded.",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func ObserveNewsFetch(result string, elapsed time.Duration) {
	newsFetchTotal.WithLabelValues(norm(result)).Inc()
	newsFetchDuration.Observe(elapsed.Seconds())
}

func IncArticleSkipped() {
	newsArticlesSkippedTotal.Inc()
}
