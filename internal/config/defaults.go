package config

import "time"

const defaultPort = 8080

var defaultBroker = Broker{
	Host:           "127.0.0.1",
	Port:           "5672",
	User:           "guest",
	Pass:           "guest",
	Exchange:       "delivery_notifications",
	Queue:          "delivery_notifications_queue",
	DialAttempts:   5,
	DialBaseDelay:  200 * time.Millisecond,
	DialMaxDelay:   2 * time.Second,
	PublishTimeout: 5 * time.Second,
}

var defaultGateways = Gateways{
	UserBaseURL:   "http://localhost:5001",
	DriverBaseURL: "http://localhost:5002",
	OrderBaseURL:  "http://localhost:5003",
	Timeout:       3 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    false,
	Rate:       50,
	Burst:      100,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultBroker returns the default message broker settings.
func DefaultBroker() Broker {
	return defaultBroker
}

// DefaultGateways returns the default collaborator endpoint settings.
func DefaultGateways() Gateways {
	return defaultGateways
}

// DefaultRateLimit returns the default rate limiting settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
