package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rate limiter layers.
const (
	LayerCounter  = "counter"
	LayerThrottle = "throttle"
)

// RateLimitMetrics counts rejected requests.
type RateLimitMetrics struct {
	blocked *prometheus.CounterVec
}

func NewRateLimitMetrics(reg prometheus.Registerer) *RateLimitMetrics {
	if reg == nil {
		return &RateLimitMetrics{}
	}
	blocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_blocked_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"path", "layer"})
	reg.MustRegister(blocked)
	return &RateLimitMetrics{blocked: blocked}
}

// IncBlocked records a rejection. path should be the policy prefix, not the
// raw request path, to keep label cardinality bounded.
func (m *RateLimitMetrics) IncBlocked(path, layer string) {
	if m == nil || m.blocked == nil {
		return
	}
	m.blocked.WithLabelValues(normalizeLabel(path), normalizeLabel(layer)).Inc()
}
