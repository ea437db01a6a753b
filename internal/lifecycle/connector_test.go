package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joinery-data/joinery/internal/config"
)

func newPingableMock(t *testing.T) (sqlmock.Sqlmock, func(policy config.RetryConfig) error) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return mock, func(policy config.RetryConfig) error {
		return pingWithRetry(context.Background(), db, policy)
	}
}

func TestPingWithRetry_SucceedsAfterRetries(t *testing.T) {
	mock, ping := newPingableMock(t)
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	err := ping(config.RetryConfig{MaxAttempts: 3, Interval: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPingWithRetry_ExhaustsAttempts(t *testing.T) {
	mock, ping := newPingableMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := ping(config.RetryConfig{MaxAttempts: 2, Interval: time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPingWithRetry_ZeroAttemptsCoerced(t *testing.T) {
	mock, ping := newPingableMock(t)
	mock.ExpectPing()

	err := ping(config.RetryConfig{MaxAttempts: 0})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPingWithRetry_ContextCancelled(t *testing.T) {
	db, _, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = pingWithRetry(ctx, db, config.RetryConfig{MaxAttempts: 3, Interval: time.Second})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
