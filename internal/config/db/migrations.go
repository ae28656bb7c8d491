package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// MigrationsPath — источник миграций по умолчанию (таблицы web_vitals и web_vitals_log).
const MigrationsPath = "file://./migrations"

// RunMigrations выполняет миграции базы данных PostgreSQL с помощью golang-migrate.
//
// Если миграции не требуются (ErrNoChange), сообщает об этом в логах.
func RunMigrations(dsn, source string, logger *zap.Logger) error {
	m, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	logger.Info("Migration files found. Applying migrations...", zap.String("source", source))

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No migrations to apply. Database is up-to-date.")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Migrations applied successfully")
	return nil
}
