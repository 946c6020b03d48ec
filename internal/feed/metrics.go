package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankRequests = "feed_rank_requests_total"
	MetricRankDuration = "feed_rank_duration_seconds"
	MetricPoolSize     = "feed_candidate_pool_size"
)

// Metrics contains Prometheus metrics for feed ranking operations.
// All operations are thread-safe.
type Metrics struct {
	rankRequests *prometheus.CounterVec
	rankDuration *prometheus.HistogramVec
	poolSize     *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rankRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankRequests,
				Help: "Total number of feed ranking requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		rankDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRankDuration,
				Help:    "Feed ranking pipeline duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"kind"},
		),
		poolSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricPoolSize,
				Help:    "Number of candidates fetched per ranking request",
				Buckets: []float64{0, 5, 10, 15, 20, 25, 30},
			},
			[]string{"kind"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.rankRequests,
		m.rankDuration,
		m.poolSize,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRank records one completed ranking request.
func (m *Metrics) ObserveRank(kind Kind, outcome string, poolSize int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rankRequests.WithLabelValues(string(kind), outcome).Inc()
	m.rankDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	m.poolSize.WithLabelValues(string(kind)).Observe(float64(poolSize))
}
