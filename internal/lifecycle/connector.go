package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/joinery-data/joinery/internal/config"
)

// Connector establishes the shared database handle for stage 2. The
// retry policy carried by the configuration is the connector's to
// execute; the coordinator never interprets it.
type Connector interface {
	Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error)
}

// PostgresConnector connects through the pgx stdlib driver, applies the
// configured pool settings, and verifies the connection with a ping,
// retrying per the configured policy.
type PostgresConnector struct{}

// Connect implements Connector.
func (PostgresConnector) Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}

	pool := cfg.Database.Pool
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err := pingWithRetry(ctx, db, cfg.Database.Retry); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// pingWithRetry verifies connectivity, sleeping the configured interval
// between attempts.
func pingWithRetry(ctx context.Context, db *sql.DB, policy config.RetryConfig) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("connect cancelled before attempt %d: %w", attempt, ctx.Err())
		}

		if lastErr = db.PingContext(ctx); lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("connect cancelled during retry: %w", ctx.Err())
		case <-time.After(policy.Interval):
		}
	}

	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}
