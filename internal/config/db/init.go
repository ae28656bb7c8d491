package db

import (
	"context"
	"fmt"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// InitDB подключается к PostgreSQL с повторными попытками и применяет миграции.
func InitDB(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := config.RetryWithBackoff(ctx, func() error {
		var innerErr error
		pool, innerErr = pgxpool.New(ctx, dsn)
		if innerErr != nil {
			return innerErr
		}
		return pool.Ping(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db after retries: %w", err)
	}

	logger.Info("Connected to PostgreSQL")

	if err := config.RetryWithBackoff(ctx, func() error {
		return RunMigrations(dsn, MigrationsPath, logger)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations after retries: %w", err)
	}

	return pool, nil
}
