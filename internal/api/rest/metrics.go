package rest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Метки исхода вызова.
const (
	outcomeOK        = "ok"
	outcomeError     = "error"
	outcomeTransport = "transport_error"
)

// Metrics — prometheus-метрики исходящих API-вызовов.
// endpoint — логическое имя операции (list_posts, toggle_post_like, ...),
// а не сырой путь: кардинальность меток остаётся постоянной.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в reg (nil -> prometheus.DefaultRegisterer).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogclient_api_requests_total",
			Help: "Outgoing blog API requests by method, endpoint and outcome.",
		}, []string{"method", "endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blogclient_api_request_seconds",
			Help:    "Outgoing blog API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}

	reg.MustRegister(m.requests, m.duration)

	return m
}

func (m *Metrics) record(method, endpoint, outcome string, dur time.Duration) {
	m.requests.WithLabelValues(method, endpoint, outcome).Inc()
	m.duration.WithLabelValues(method, endpoint).Observe(dur.Seconds())
}
