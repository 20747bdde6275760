// Package postgres implements the engine store on PostgreSQL with pgx.
// Every engine operation runs in a SERIALIZABLE transaction; serialization
// failures are retried with bounded backoff, so conflicting concurrent
// operations on the same ledger are linearized - one wins, one retries.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heroforge-edu/heroforge-engine/pkg/retry"
)

var (
	// ErrConnectionClosed indicates the connection pool is closed.
	ErrConnectionClosed = errors.New("postgres: connection pool is closed")

	// ErrTransactionFailed indicates a transaction failure.
	ErrTransactionFailed = errors.New("postgres: transaction failed")
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration

	// TxMaxAttempts bounds serialization-failure retries per operation.
	TxMaxAttempts int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:            5432,
		Database:        "heroforge",
		User:            "heroforge",
		SSLMode:         "require",
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		TxMaxAttempts:   5,
	}
}

// DSN returns the connection string for PostgreSQL.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s connect_timeout=%d",
		c.Host, c.Port, c.Database, c.User, c.Password, c.SSLMode,
		int(c.ConnectTimeout.Seconds()),
	)
}

// Connection wraps a pgx connection pool with the engine's transaction
// discipline.
type Connection struct {
	pool    *pgxpool.Pool
	retrier *retry.Retrier
}

// NewConnection creates a new connection pool and verifies it.
func NewConnection(ctx context.Context, cfg Config) (*Connection, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	return newConnection(pool, cfg.TxMaxAttempts), nil
}

// NewConnectionFromURL creates a connection from a database URL.
func NewConnectionFromURL(ctx context.Context, databaseURL string) (*Connection, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}
	return newConnection(pool, DefaultConfig().TxMaxAttempts), nil
}

func newConnection(pool *pgxpool.Pool, maxAttempts int) *Connection {
	if maxAttempts <= 0 {
		maxAttempts = DefaultConfig().TxMaxAttempts
	}
	return &Connection{
		pool: pool,
		retrier: retry.New(
			retry.WithMaxAttempts(maxAttempts),
			retry.WithInitialDelay(20*time.Millisecond),
			retry.WithMaxDelay(500*time.Millisecond),
			retry.WithRetryIf(IsSerializationFailure),
		),
	}
}

// Pool returns the underlying connection pool.
func (c *Connection) Pool() *pgxpool.Pool {
	return c.pool
}

// Close closes the connection pool.
func (c *Connection) Close() {
	c.pool.Close()
}

// Ping checks if the database connection is alive.
func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// WithSerializableTx runs fn in a SERIALIZABLE transaction, retrying the
// whole transaction on serialization failures and deadlocks. fn must be
// side-effect free outside the transaction - it may run several times.
func (c *Connection) WithSerializableTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{
			IsoLevel:   pgx.Serializable,
			AccessMode: pgx.ReadWrite,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}

		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback(ctx)
				panic(p)
			}
		}()

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
			}
			if IsSerializationFailure(err) {
				return err
			}
			// Domain errors must not be retried.
			return retry.Permanent(err)
		}

		if err := tx.Commit(ctx); err != nil {
			if IsSerializationFailure(err) {
				return err
			}
			return fmt.Errorf("commit error: %w", err)
		}
		return nil
	})
}

// IsSerializationFailure reports whether the error is a serialization
// failure (40001) or deadlock (40P01), both safe to retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// IsUniqueViolation checks if the error is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsNoRows checks if the error is a "no rows" error.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
