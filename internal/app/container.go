package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-delivery-go/internal/broker"
	"service-delivery-go/internal/config"
	"service-delivery-go/internal/gateway/drivers"
	"service-delivery-go/internal/gateway/orders"
	"service-delivery-go/internal/gateway/users"
	"service-delivery-go/internal/http/handlers"
	"service-delivery-go/internal/http/middleware/ratelimit"
	"service-delivery-go/internal/http/pprofserver"
	"service-delivery-go/internal/http/router"
	"service-delivery-go/internal/logx"
	"service-delivery-go/internal/service/notify"
	"service-delivery-go/internal/service/saga"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		logFatalf: log.Fatalf,
	}
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerBroker(container); err != nil {
		return nil, fmt.Errorf("broker: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		provideMetrics,
	)
}

type brokerIn struct {
	dig.In

	Cfg        *config.Config
	Logger     logx.Logger
	Reconnects prometheus.Counter `name:"broker_reconnects_total"`
}

func registerBroker(container *dig.Container) error {
	return provideAll(container,
		func(in brokerIn) *broker.Manager {
			return broker.NewManager(in.Cfg.Broker, in.Logger, in.Reconnects)
		},
	)
}

func registerGateways(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *http.Client {
			return &http.Client{Timeout: cfg.Gateways.Timeout}
		},
		func(cfg *config.Config, client *http.Client) *users.Gateway {
			return users.New(client, cfg.Gateways.UserBaseURL)
		},
		func(cfg *config.Config, client *http.Client) *drivers.Gateway {
			return drivers.New(client, cfg.Gateways.DriverBaseURL)
		},
		func(cfg *config.Config, client *http.Client) *orders.Gateway {
			return orders.New(client, cfg.Gateways.OrderBaseURL)
		},
	)
}

type publisherIn struct {
	dig.In

	Broker  *broker.Manager
	Logger  logx.Logger
	Skipped prometheus.Counter `name:"publish_skipped_total"`
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		func(in publisherIn) *notify.Publisher {
			return notify.NewPublisher(in.Broker, in.Logger, in.Skipped)
		},
		func(
			cfg *config.Config,
			u *users.Gateway,
			d *drivers.Gateway,
			o *orders.Gateway,
			p *notify.Publisher,
			logger logx.Logger,
		) *saga.Service {
			return saga.NewService(u, d, o, p, cfg.Gateways.Timeout, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	routerProvider := func(
		cfg *config.Config,
		logger logx.Logger,
		base *handlers.Handlers,
		del *handlers.DeliveryHandler,
		rl *ratelimit.Middleware,
	) http.Handler {
		auth := pprofserver.Auth{User: cfg.Pprof.User, Pass: cfg.Pprof.Pass}
		return router.New(logger, base, del, rl, auth)
	}
	return provideAll(container,
		handlers.New,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}
