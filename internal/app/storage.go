package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"food-dispatch/internal/config"
	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
	"food-dispatch/internal/repository"
	"food-dispatch/internal/repository/memory"
	"food-dispatch/internal/service/dispatch"
	"food-dispatch/internal/service/orders"
)

type partnerStore interface {
	dispatch.PartnerRegistry
	Create(ctx context.Context, p *domain.Partner) error
	List(ctx context.Context) ([]domain.Partner, error)
}

type orderStore interface {
	dispatch.OrderStore
	orders.OrderRepository
}

var (
	_ partnerStore = (*repository.PartnerRepo)(nil)
	_ partnerStore = (*memory.Partners)(nil)
	_ orderStore   = (*repository.OrderRepo)(nil)
	_ orderStore   = (*memory.Orders)(nil)
)

// Storage is the selected state store shared by every service.
type Storage struct {
	Partners partnerStore
	Orders   orderStore
	pool     *pgxpool.Pool
}

// Close releases the database pool, if any.
func (s *Storage) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func openStorage(
	ctx context.Context,
	cfg *config.Config,
	logger logx.Logger,
	dbConnect dbConnectFunc,
	migrateUp func(string) error,
) (*Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Info("using in-memory storage")
		return &Storage{Partners: memory.NewPartners(), Orders: memory.NewOrders()}, nil
	case config.StoragePostgres, "":
		dsn := cfg.DB.DSN()
		pool, err := dbConnect(ctx, logger, dsn, 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := migrateUp(dsn); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Storage{
			Partners: repository.NewPartnerRepo(pool),
			Orders:   repository.NewOrderRepo(pool),
			pool:     pool,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
}
