// Package storage bootstraps the Bun database used by the composer
// repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open opens a SQLite database and wraps it for Bun. For Postgres
// deployments open the *sql.DB with your driver of choice and pass it to
// NewDB instead.
func Open(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: opening sqlite database: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewDB wraps an already opened database with the dialect matching driver.
func NewDB(sqldb *sql.DB, driver string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite:
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

// Migrator creates the tables a repository needs.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Migrate runs every supplied migrator in order.
func Migrate(ctx context.Context, migrators ...Migrator) error {
	for _, m := range migrators {
		if m == nil {
			continue
		}
		if err := m.Migrate(ctx); err != nil {
			return err
		}
	}
	return nil
}
