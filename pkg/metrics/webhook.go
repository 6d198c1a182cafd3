package metrics

import "github.com/prometheus/client_golang/prometheus"

// Result label values for WebhookIntentsTotal.
const (
	ResultApplied  = "applied"
	ResultNoop     = "noop"
	ResultQueued   = "queued"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// WebhookIntentsTotal counts webhook deliveries by intent kind and result.
// Kind is "unknown" when the payload was rejected before classification.
var WebhookIntentsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "intents_total",
		Help:      "Webhook deliveries by intent kind and result",
	},
	[]string{"kind", "result"},
)

func init() {
	Registry.MustRegister(WebhookIntentsTotal)
}
