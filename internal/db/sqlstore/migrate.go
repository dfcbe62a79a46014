package sqlstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/kailas-cloud/shoprec/internal/db"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations and returns the resulting schema version.
func (s *Store) Migrate() (uint, error) {
	m, closeFn, err := s.newMigrate()
	if err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: err}
	}
	defer closeFn()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("failed to apply migrations: %w", err)}
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("failed to get migration version: %w", err)}
	}
	if dirty {
		return version, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("schema version %d is dirty", version)}
	}
	return version, nil
}

// newMigrate builds a migrate instance over the embedded migrations. The
// returned close func releases whatever the instance owns without closing the
// shared pool.
func (s *Store) newMigrate() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	var (
		drv     database.Driver
		ownedDB *sql.DB
	)
	switch s.driver {
	case DriverSQLite:
		drv, err = sqlite.WithInstance(s.db, &sqlite.Config{})
	case DriverPostgres:
		// the postgres driver pins a connection and closes its *sql.DB on Close
		ownedDB, err = sql.Open(DriverPostgres, s.dsn)
		if err == nil {
			drv, err = postgres.WithInstance(ownedDB, &postgres.Config{})
		}
	default:
		err = fmt.Errorf("unsupported database driver: %q", s.driver)
	}
	if err != nil {
		_ = src.Close()
		if ownedDB != nil {
			_ = ownedDB.Close()
		}
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.driver, drv)
	if err != nil {
		_ = src.Close()
		if ownedDB != nil {
			_ = ownedDB.Close()
		}
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	closeFn := func() {
		if ownedDB != nil {
			_, _ = m.Close()
			return
		}
		_ = src.Close()
	}
	return m, closeFn, nil
}
