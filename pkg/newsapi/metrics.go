package newsapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdesk",
			Subsystem: "newsapi",
			Name:      "requests_total",
			Help:      "Completed NewsAPI calls by endpoint and outcome kind.",
		},
		[]string{"endpoint", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsdesk",
			Subsystem: "newsapi",
			Name:      "request_duration_seconds",
			Help:      "Wall time from dispatch to result, including retries.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdesk",
			Subsystem: "newsapi",
			Name:      "retries_total",
			Help:      "Transport attempts repeated after a transient failure.",
		},
		[]string{"endpoint"},
	)

	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdesk",
			Subsystem: "newsapi",
			Name:      "cache_hits_total",
			Help:      "Calls answered from the response cache.",
		},
		[]string{"endpoint"},
	)
)

// outcomeLabel names the metric outcome for err.
func outcomeLabel(err error) string {
	switch KindOf(err) {
	case nil:
		if err == nil {
			return "success"
		}
		return "error"
	case ErrTransport:
		return "transport_error"
	case ErrNoData:
		return "no_data"
	case ErrCouldNotParse:
		return "could_not_parse"
	case ErrInvalidURL:
		return "invalid_url"
	default:
		return "invalid_params"
	}
}
