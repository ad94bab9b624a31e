package metrics

import "github.com/prometheus/client_golang/prometheus"

// Webhook delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// WebhookMetrics counts outbound webhook deliveries and HTTP attempts.
type WebhookMetrics struct {
	deliveries *prometheus.CounterVec
	attempts   *prometheus.CounterVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_deliveries_total",
		Help:      "Webhook deliveries by event and outcome.",
	}, []string{"event", "outcome"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_attempts_total",
		Help:      "HTTP attempts made for webhook deliveries.",
	}, []string{"event"})
	reg.MustRegister(deliveries, attempts)
	return &WebhookMetrics{deliveries: deliveries, attempts: attempts}
}

// Observe records one delivery with its outcome and attempt count.
func (m *WebhookMetrics) Observe(event, outcome string, attempts int) {
	if m == nil || m.deliveries == nil {
		return
	}
	event = normalizeLabel(event)
	m.deliveries.WithLabelValues(event, normalizeLabel(outcome)).Inc()
	if attempts > 0 {
		m.attempts.WithLabelValues(event).Add(float64(attempts))
	}
}
