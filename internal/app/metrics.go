package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-delivery-go/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	BrokerReconnectsTotal  prometheus.Counter `name:"broker_reconnects_total"`
	PublishSkippedTotal    prometheus.Counter `name:"publish_skipped_total"`
}

// provideMetrics registers the service counters on the default registerer.
// A counter that is already registered (container rebuilt in-process, e.g. in
// tests) is reused rather than treated as an error.
func provideMetrics() (metricsOut, error) {
	rl, err := registerCounter(metrics.NewRateLimitExceededTotal(), "rate_limit_exceeded_total")
	if err != nil {
		return metricsOut{}, err
	}
	br, err := registerCounter(metrics.NewBrokerReconnectsTotal(), "broker_reconnects_total")
	if err != nil {
		return metricsOut{}, err
	}
	ps, err := registerCounter(metrics.NewPublishSkippedTotal(), "publish_skipped_total")
	if err != nil {
		return metricsOut{}, err
	}
	return metricsOut{
		RateLimitExceededTotal: rl,
		BrokerReconnectsTotal:  br,
		PublishSkippedTotal:    ps,
	}, nil
}

func registerCounter(c prometheus.Counter, name string) (prometheus.Counter, error) {
	err := prometheus.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("register %s: %w", name, err)
}
