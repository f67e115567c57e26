package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores delivery orchestrator settings.
type Config struct {
	Port      int
	Broker    Broker
	Gateways  Gateways
	RateLimit RateLimit
	Pprof     Pprof
}

// Pprof stores basic-auth credentials for the debug endpoints. Empty
// credentials leave the endpoints reachable from loopback only.
type Pprof struct {
	User string
	Pass string
}

// Broker stores message broker connection settings.
type Broker struct {
	Host           string
	Port           string
	User           string
	Pass           string
	Exchange       string
	Queue          string
	DialAttempts   int
	DialBaseDelay  time.Duration
	DialMaxDelay   time.Duration
	PublishTimeout time.Duration
}

// URL builds the AMQP connection URL.
func (b Broker) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", b.User, b.Pass, b.Host, b.Port)
}

// Gateways stores collaborator service endpoints and the per-call timeout.
type Gateways struct {
	UserBaseURL   string
	DriverBaseURL string
	OrderBaseURL  string
	Timeout       time.Duration
}

// RateLimit stores HTTP rate limiting settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      DefaultPort(),
		Broker:    DefaultBroker(),
		Gateways:  DefaultGateways(),
		RateLimit: DefaultRateLimit(),
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.Broker.Host, "broker-host", cfg.Broker.Host, "message broker host")
	pflag.StringVar(&cfg.Broker.Port, "broker-port", cfg.Broker.Port, "message broker port")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Broker.DialAttempts <= 0 {
		return nil, fmt.Errorf("invalid broker dial attempts: %d", cfg.Broker.DialAttempts)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = p
	}

	setString(&cfg.Broker.Host, "RABBITMQ_HOST")
	setString(&cfg.Broker.Port, "RABBITMQ_PORT")
	setString(&cfg.Broker.User, "RABBITMQ_USER")
	setString(&cfg.Broker.Pass, "RABBITMQ_PASSWORD")
	setString(&cfg.Broker.Exchange, "NOTIFICATION_EXCHANGE")
	setString(&cfg.Broker.Queue, "NOTIFICATION_QUEUE")
	if err := setDuration(&cfg.Broker.PublishTimeout, "BROKER_PUBLISH_TIMEOUT"); err != nil {
		return err
	}

	setString(&cfg.Gateways.UserBaseURL, "USER_SERVICE_URL")
	setString(&cfg.Gateways.DriverBaseURL, "DRIVER_SERVICE_URL")
	setString(&cfg.Gateways.OrderBaseURL, "ORDER_SERVICE_URL")
	if err := setDuration(&cfg.Gateways.Timeout, "GATEWAY_TIMEOUT"); err != nil {
		return err
	}

	setString(&cfg.Pprof.User, "PPROF_USER")
	setString(&cfg.Pprof.Pass, "PPROF_PASSWORD")

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_ENABLED: %q", v)
		}
		cfg.RateLimit.Enabled = enabled
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	*dst = d
	return nil
}
