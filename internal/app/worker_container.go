package app

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/dig"

	"service-delivery-go/internal/broker"
	"service-delivery-go/internal/config"
	"service-delivery-go/internal/logx"
	"service-delivery-go/internal/service/notify"
)

// bindPattern subscribes the notifier queue to every delivery event.
const bindPattern = "delivery.*"

// MustBuildWorkerContainer builds the DI container for the notifier worker.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewWorkerContainerBuilder().MustBuild(ctx)
}

// WorkerContainerBuilder is a dig container builder for the notifier worker.
type WorkerContainerBuilder struct {
	logFatalf func(string, ...interface{})
}

// NewWorkerContainerBuilder returns a new worker container builder
func NewWorkerContainerBuilder() *WorkerContainerBuilder {
	return &WorkerContainerBuilder{logFatalf: log.Fatalf}
}

// WithLogFatalf sets the log.Fatalf function
func (b *WorkerContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *WorkerContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *WorkerContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *WorkerContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerBroker(container); err != nil {
		return nil, fmt.Errorf("broker: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, mgr *broker.Manager, logger logx.Logger) *broker.Consumer {
			return broker.NewConsumer(mgr, cfg.Broker, bindPattern, notify.NewHandler(logger), logger)
		},
	)
}
