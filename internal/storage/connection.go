package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const connectTimeout = 5 * time.Second

// Sentinel errors for connection management.
var (
	// ErrNoDatabaseConnection is returned when a store is constructed
	// without a connection.
	ErrNoDatabaseConnection = errors.New("no database connection")

	// ErrInvalidStorageConfig is returned when the storage configuration
	// fails validation.
	ErrInvalidStorageConfig = errors.New("invalid storage configuration")
)

// Connection wraps *sql.DB with pool configuration applied. It is shared by
// all stores and closed once by the owning process on shutdown.
//
// The DB field is exported so tests can construct a Connection directly
// around a testcontainers database.
type Connection struct {
	DB *sql.DB
}

// NewConnection opens a pooled PostgreSQL connection from config and
// verifies it with a ping before returning.
func NewConnection(cfg *Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStorageConfig, err)
	}

	db, err := sql.Open("postgres", cfg.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{DB: db}, nil
}

// BeginTx starts a transaction on the underlying pool. The transaction
// holds one connection exclusively until Commit or Rollback.
func (c *Connection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.DB.BeginTx(ctx, opts)
}

// ExecContext executes a statement without returning rows.
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query expected to return at most one row.
func (c *Connection) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// HealthCheck verifies the database is reachable.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if c.DB == nil {
		return ErrNoDatabaseConnection
	}

	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (c *Connection) Close() error {
	if c.DB == nil {
		return nil
	}

	return c.DB.Close()
}
