package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"

	"food-dispatch/internal/logx"
	"food-dispatch/internal/service/dispatch"
	"food-dispatch/internal/transport/kafka"
)

// WorkerRunner runs the Kafka worker process
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
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

// workerRun consumes order status events. Timers armed here by assignments are
// dropped on exit; the API process's sweeper completes those deliveries.
func workerRun(
	ctx context.Context,
	storage *Storage,
	logger logx.Logger,
	consumer *kafka.Consumer,
	timers *dispatch.Timers,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(storage, logger, consumer, timers)

	logger.Info("service-dispatch-worker started")
	return consumer.Run(ctx)
}

func closeWorker(storage *Storage, logger logx.Logger, consumer *kafka.Consumer, timers *dispatch.Timers) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if timers != nil {
		timers.Stop()
	}
	storage.Close()
}
