package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewBrokerReconnectsTotal returns a Prometheus counter for the number of broker reconnect attempts
func NewBrokerReconnectsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_reconnects_total",
		Help: "Total number of message broker reconnect attempts",
	})
}

// NewPublishSkippedTotal returns a Prometheus counter for notification publishes skipped due to an unrecognized status
func NewPublishSkippedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "publish_skipped_total",
		Help: "Total number of notification publishes skipped due to an unrecognized delivery status",
	})
}
