package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"

	"service-delivery-go/internal/broker"
	"service-delivery-go/internal/logx"
)

// WorkerRunner runs the notifier consumer loop.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the consumer until the context is canceled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	mgr *broker.Manager,
	logger logx.Logger,
	consumer *broker.Consumer,
) error {
	if consumer == nil {
		return fmt.Errorf("consumer is nil: worker container misconfigured")
	}
	defer closeWorker(mgr, logger)

	logger.Info("notifier started")
	return consumer.Run(ctx)
}

func closeWorker(mgr *broker.Manager, logger logx.Logger) {
	if mgr != nil {
		if err := mgr.Close(); err != nil {
			logger.Error("broker close error", logx.Err(err))
		}
	}
}
