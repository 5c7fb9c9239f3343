package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"food-dispatch/internal/config"
	"food-dispatch/internal/http/handlers"
	"food-dispatch/internal/http/router"
	"food-dispatch/internal/jobs"
	"food-dispatch/internal/logx"
	"food-dispatch/internal/metrics"
	"food-dispatch/internal/migrate"
	"food-dispatch/internal/service/dispatch"
	"food-dispatch/internal/service/orders"
	"food-dispatch/internal/service/partners"
	"food-dispatch/internal/transport/kafka"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect  dbConnectFunc
	migrateUp  func(dsn string) error
	loadConfig func() (*config.Config, error)
	registerer prometheus.Registerer
	logFatalf  func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect:  connectDbWithRetry,
		migrateUp:  migrate.Up,
		loadConfig: config.Load,
		registerer: prometheus.DefaultRegisterer,
		logFatalf:  log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithMigrate sets the schema migration function
func (b *ContainerBuilder) WithMigrate(fn func(dsn string) error) *ContainerBuilder {
	if fn != nil {
		b.migrateUp = fn
	}
	return b
}

// WithConfig sets the configuration loader
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithRegisterer sets the prometheus registerer
func (b *ContainerBuilder) WithRegisterer(reg prometheus.Registerer) *ContainerBuilder {
	if reg != nil {
		b.registerer = reg
	}
	return b
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

	if err := registerCore(container, ctx, b.loadConfig, b.registerer); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStorage(container, b.dbConnect, b.migrateUp); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := registerDispatch(container); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerKafka(container); err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the API container.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the worker container. It shares every
// provider with the API one; the worker only invokes what it needs.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
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

func registerCore(
	container *dig.Container,
	ctx context.Context,
	loadConfig func() (*config.Config, error),
	reg prometheus.Registerer,
) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadConfig,
		newLogger,
		func() prometheus.Registerer { return reg },
		provideMetrics,
	)
}

type metricsOut struct {
	dig.Out

	Dispatch            *metrics.Dispatch
	NotificationsFailed prometheus.Counter `name:"notifications_failed_total"`
}

func provideMetrics(reg prometheus.Registerer) (metricsOut, error) {
	d := metrics.NewDispatch()
	if err := d.Register(reg); err != nil {
		return metricsOut{}, fmt.Errorf("register dispatch metrics: %w", err)
	}
	failed, err := metrics.Register(reg, metrics.NewNotificationsFailedTotal())
	if err != nil {
		return metricsOut{}, fmt.Errorf("register order_notifications_failed_total: %w", err)
	}
	return metricsOut{Dispatch: d, NotificationsFailed: failed}, nil
}

func registerStorage(container *dig.Container, dbConnect dbConnectFunc, migrateUp func(string) error) error {
	return provideAll(container, func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*Storage, error) {
		return openStorage(ctx, cfg, logger, dbConnect, migrateUp)
	})
}

func registerDispatch(container *dig.Container) error {
	return provideAll(container,
		dispatch.NewTimers,
		func(s *Storage, timers *dispatch.Timers, cfg *config.Config, logger logx.Logger, m *metrics.Dispatch) *dispatch.Engine {
			return dispatch.NewEngine(s.Partners, s.Orders, timers, cfg.Delivery.OperationTimeout, logger,
				dispatch.WithETA(dispatch.NewRandomETA(cfg.Delivery.ETAMin, cfg.Delivery.ETAMax)),
				dispatch.WithMetrics(m),
			)
		},
		func(s *Storage, engine *dispatch.Engine, cfg *config.Config, logger logx.Logger, m *metrics.Dispatch) *dispatch.Sweeper {
			return dispatch.NewSweeper(s.Partners, engine, cfg.Delivery.SweepConcurrency, cfg.Delivery.OperationTimeout, logger,
				dispatch.WithSweepMetrics(m),
			)
		},
		func(sweeper *dispatch.Sweeper, cfg *config.Config, logger logx.Logger) *jobs.SweepJob {
			return jobs.NewSweepJob(sweeper, cfg.Delivery.SweepInterval, logger)
		},
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		func(s *Storage, engine *dispatch.Engine, n orders.Notifier, cfg *config.Config, logger logx.Logger) *orders.Service {
			return orders.NewService(s.Orders, engine, n, cfg.Delivery.OperationTimeout, logger)
		},
		func(s *Storage, cfg *config.Config, logger logx.Logger) *partners.Service {
			return partners.NewService(s.Partners, cfg.Delivery.OperationTimeout, logger)
		},
		func(svc *orders.Service, logger logx.Logger) *orders.Processor {
			return orders.NewProcessor(svc, logger)
		},
	)
}

type notifierIn struct {
	dig.In

	Config *config.Config
	Logger logx.Logger
	Failed prometheus.Counter `name:"notifications_failed_total"`
}

type notifierOut struct {
	dig.Out

	Notifier orders.Notifier
	Closer   notifierCloser
}

type notifierCloser func() error

func provideNotifier(in notifierIn) (notifierOut, error) {
	if !in.Config.Kafka.Enabled() {
		return notifierOut{Notifier: kafka.NopNotifier{}, Closer: func() error { return nil }}, nil
	}
	n, err := kafka.NewNotifier(in.Logger, in.Config.Kafka.Brokers, in.Config.Kafka.NotifyTopic, in.Failed)
	if err != nil {
		return notifierOut{}, err
	}
	return notifierOut{Notifier: n, Closer: n.Close}, nil
}

func registerKafka(container *dig.Container) error {
	return provideAll(container,
		provideNotifier,
		func(cfg *config.Config, logger logx.Logger, p *orders.Processor) (*kafka.Consumer, error) {
			return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.StatusTopic, makeOrdersKafka(p))
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
	return provideAll(container,
		handlers.New,
		handlers.NewOrderUsecase,
		handlers.NewOrderHandler,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		handlers.NewPartnerUsecase,
		handlers.NewPartnerHandler,
		router.New,
		serverProvider,
	)
}
