package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	// Database drivers selectable through DATABASE_DRIVER.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

// Supported database/sql driver names.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB wraps the shared sql.DB connection pool.
type DB struct {
	conn *sql.DB
}

// PoolOptions tunes the connection pool. Zero values keep database/sql defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewDB opens a database connection and runs migrations.
func NewDB(driver, dsn string) (*DB, error) {
	return NewDBWithPool(driver, dsn, PoolOptions{})
}

// NewDBWithPool is NewDB with explicit pool settings.
func NewDBWithPool(driver, dsn string, pool PoolOptions) (*DB, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// Each SQLite connection to :memory: is a separate database, and
		// pragmas are per connection, so keep exactly one alive.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		if pool.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(pool.MaxOpenConns)
		}
		if pool.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(pool.MaxIdleConns)
		}
		if pool.ConnMaxLifetime > 0 {
			conn.SetConnMaxLifetime(pool.ConnMaxLifetime)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(ctx, dialect); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func dialectFor(driver string) (goose.Dialect, error) {
	switch driver {
	case DriverPgx, DriverPostgres:
		return goose.DialectPostgres, nil
	case DriverSQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func (db *DB) migrate(ctx context.Context, dialect goose.Dialect) error {
	dir := "migrations/postgres"
	if dialect == goose.DialectSQLite3 {
		dir = "migrations/sqlite"
	}
	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.conn, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
