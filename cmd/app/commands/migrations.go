package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrateOptions selects what RunMigrations applies.
type MigrateOptions struct {
	// Dir holds one subdirectory per dialect: postgresql and mysql.
	Dir string
	// Steps applies that many migrations, negative to roll back. Zero applies all pending.
	Steps int
}

var migrationDirs = map[string]string{
	"postgres": "postgresql",
	"mysql":    "mysql",
}

// migrationDatabaseURL adds the mysql:// scheme golang-migrate needs to a go-sql-driver DSN.
func migrationDatabaseURL(driver, connectionString string) string {
	if driver == "mysql" && !strings.HasPrefix(connectionString, "mysql://") {
		return "mysql://" + connectionString
	}
	return connectionString
}

// RunMigrations migrates the schema of driver and logs the resulting version.
func RunMigrations(logger *slog.Logger, driver, connectionString string, opts MigrateOptions) error {
	dialect, ok := migrationDirs[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if opts.Dir == "" {
		opts.Dir = "migrations"
	}
	source := "file://" + path.Join(opts.Dir, dialect)

	logger.Info("running database migrations",
		slog.String("driver", driver),
		slog.String("source", source),
		slog.Int("steps", opts.Steps),
	)

	m, err := migrate.New(source, migrationDatabaseURL(driver, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if opts.Steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(opts.Steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("migrations completed, schema is empty")
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		logger.Info("migrations completed", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	return nil
}
