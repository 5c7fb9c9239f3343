package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"food-dispatch/internal/apperr"
)

const (
	applicationName = "food-dispatch"
	// minPoolConns leaves room for the sweeper's concurrent completions
	// alongside HTTP traffic and timer callbacks.
	minPoolConns = 16
	pingTimeout  = 3 * time.Second
)

// NewPool opens the pgx pool backing the partner and order stores and pings it.
// A malformed DSN is apperr.ErrInvalid; any connection failure is
// apperr.ErrStoreUnavailable.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w: %w", apperr.ErrInvalid, err)
	}
	if cfg.MaxConns < minPoolConns {
		cfg.MaxConns = minPoolConns
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, unavailable("open pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, unavailable("ping", err)
	}
	return pool, nil
}
