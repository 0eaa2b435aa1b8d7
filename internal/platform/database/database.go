package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"complyhr/internal/platform/config"
	"complyhr/migrations"
)

// Open picks the driver from the URL: postgres:// and postgresql:// go to lib/pq,
// anything else is treated as a sqlite file path (an optional "file:" prefix is stripped).
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver, dsn := driverFor(cfg.URL)

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if driver == "sqlite3" || maxConns <= 0 {
		// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY under load.
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func driverFor(url string) (driver, dsn string) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url
	}

	dsn = strings.TrimPrefix(url, "file:")
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}
	return "sqlite3", dsn
}

// OpenInMemory returns a migrated private sqlite database. The pool is pinned to a
// single connection because every :memory: connection is its own database.
func OpenInMemory(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := migrations.Apply(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// IsUniqueViolation reports whether err is a uniqueness constraint failure from either driver.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
