package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/dig"

	"food-dispatch/internal/jobs"
	"food-dispatch/internal/logx"
	"food-dispatch/internal/service/dispatch"
)

// Runner runs the API process.
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the API using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	_ = container.Invoke(func(logger logx.Logger) {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Info("shutdown requested, exiting")
			err = nil
		case errors.Is(err, context.DeadlineExceeded):
			logger.Error("startup aborted: startup timeout exceeded")
			err = nil
		default:
			logger.Error("run error", logx.Err(err))
		}
		_ = logger.Sync()
	})
	if err != nil {
		panic(err)
	}
}

type appIn struct {
	dig.In

	Ctx      context.Context
	Logger   logx.Logger
	Server   *http.Server
	Storage  *Storage
	Engine   *dispatch.Engine
	Timers   *dispatch.Timers
	SweepJob *jobs.SweepJob
	Closer   notifierCloser `optional:"true"`
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in appIn) error {
	defer closeResources(in)

	if n, err := in.Engine.Rearm(in.Ctx); err != nil {
		in.Logger.Warn("rearm timers failed, sweeper will catch up", logx.Err(err))
	} else {
		in.Logger.Info("startup rearm finished", logx.Int("timers", n))
	}
	if err := in.SweepJob.Start(in.Ctx); err != nil {
		return err
	}
	defer in.SweepJob.Stop()

	errCh := startServer(in.Server, in.Logger)

	select {
	case <-in.Ctx.Done():
		in.Logger.Info("shutting down service-dispatch")
	case err := <-errCh:
		return err
	}
	gracefulShutdown(in.Server, in.Logger, 15*time.Second)
	return in.Ctx.Err()
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("service-dispatch listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(in appIn) {
	in.Timers.Stop()
	if in.Closer != nil {
		if err := in.Closer(); err != nil {
			in.Logger.Error("notifier close error", logx.Err(err))
		}
	}
	in.Storage.Close()
}
