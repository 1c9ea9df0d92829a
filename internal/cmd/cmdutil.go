package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bjarke-xyz/careercode/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func newLogger(env string, service string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return logger.With(slog.Group("service_info", slog.String("env", env), slog.String("service", service)))
}

// newDatabasePool brings the schema up to date and opens a pool that has
// answered a ping.
func newDatabasePool(ctx context.Context, logger *slog.Logger, cfg config) (*pgxpool.Pool, error) {
	version, err := repository.Migrate(cfg.DatabaseURL, repository.MigrateUp)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	logger.Info("database schema ready", "version", version)

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(max(1, cfg.DBMaxConns))
	poolConfig.MinConns = min(2, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Second
	// DATABASE_CONNECTION_POOL_URL may point at a transaction pooler, which
	// cannot hold prepared statements between queries.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}
