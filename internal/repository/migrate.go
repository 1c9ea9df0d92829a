package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Direction string

const (
	MigrateUp   Direction = "up"
	MigrateDown Direction = "down"
)

// Migrate moves the jobs and applications schema in the given direction and
// returns the schema version afterwards. Version 0 means no migration is
// applied.
func Migrate(dbConnStr string, direction Direction) (uint, error) {
	if direction != MigrateUp && direction != MigrateDown {
		return 0, fmt.Errorf("unknown migration direction %q", direction)
	}
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to load migration files: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbConnStr)
	if err != nil {
		return 0, fmt.Errorf("failed to open migration target: %w", err)
	}
	defer m.Close()

	if direction == MigrateUp {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to migrate %v: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
