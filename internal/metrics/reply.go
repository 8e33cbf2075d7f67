package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reply pipeline Prometheus metrics.
var (
	RepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Replies produced, by selection branch",
		},
		[]string{"branch"}, // search, question, exclamation, agreement, image, filler
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Reply index search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"driver", "status"},
	)

	ImageLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_lookups_total",
			Help:      "Image lookups, by outcome",
		},
		[]string{"outcome"}, // found, not_found, error
	)

	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Reply deliveries to the messaging platform",
		},
		[]string{"status"}, // ok, error
	)
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var replyMetricsRegistered bool

// RegisterReplyMetrics registers the reply pipeline metrics. Must be called once from main.
func RegisterReplyMetrics() {
	if replyMetricsRegistered {
		return
	}
	prometheus.MustRegister(RepliesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(ImageLookupsTotal)
	prometheus.MustRegister(DispatchTotal)
	replyMetricsRegistered = true
}
