// Domain metrics for the reconciliation and notification pipeline.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// WebhookEvents counts processed gateway webhooks by resulting action
	// ("created", "updated").
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of gateway webhook events processed.",
		},
		[]string{"action"},
	)

	// PushDeliveries counts push delivery attempts by outcome
	// ("delivered", "permanent_failure", "transient_failure").
	PushDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Total number of Web Push delivery attempts.",
		},
		[]string{"outcome"},
	)

	// PrunedSubscriptions counts subscriptions removed after a delivery
	// attempt reported the endpoint permanently gone.
	PrunedSubscriptions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_subscriptions_pruned_total",
			Help: "Total number of push subscriptions pruned as dead.",
		},
	)

	// RelayMessages counts secondary relay sends by result ("sent", "error",
	// "skipped").
	RelayMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Total number of secondary relay messages.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(WebhookEvents, PushDeliveries, PrunedSubscriptions, RelayMessages)
}
