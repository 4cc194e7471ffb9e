package metrics

import "github.com/prometheus/client_golang/prometheus"

// QueryMetrics exposes counters/histograms for the aggregation read path.
type QueryMetrics struct {
	requestsTotal *prometheus.CounterVec
	queryLatency  *prometheus.HistogramVec
}

func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	m := &QueryMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "census",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total aggregation API requests",
		}, []string{"endpoint", "status"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "census",
			Subsystem: "api",
			Name:      "query_latency_seconds",
			Help:      "Latency of aggregation query handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.queryLatency)
	return m
}

func (m *QueryMetrics) ObserveRequest(endpoint, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *QueryMetrics) ObserveLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.queryLatency.WithLabelValues(endpoint).Observe(seconds)
}
