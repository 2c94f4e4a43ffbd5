//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fetchcache "github.com/rkRashik/go-fetch-cache"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("FETCHCACHE_TEST_POSTGRES_DSN")
	if dsn == "" {
		dsn = "postgresql://localhost:5455/postgresDB?user=postgresUser&password=postgresPW&sslmode=disable"
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestRoundTripIntegration(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	s, err := New(ctx, db, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Clear(ctx)
	})

	storedAt := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set(ctx, "teams_1", &fetchcache.Entry{
		Value:    json.RawMessage(`{"teams":[]}`),
		StoredAt: storedAt,
	}))

	got, err := s.Get(ctx, "teams_1")
	require.NoError(t, err)
	assert.Equal(t, `{"teams":[]}`, string(got.Value))
	assert.True(t, got.StoredAt.Equal(storedAt))

	// overwriting set
	require.NoError(t, s.Set(ctx, "teams_1", &fetchcache.Entry{
		Value:    json.RawMessage(`{"teams":["delta"]}`),
		StoredAt: storedAt.Add(time.Second),
	}))

	got, err = s.Get(ctx, "teams_1")
	require.NoError(t, err)
	assert.Equal(t, `{"teams":["delta"]}`, string(got.Value))

	_, err = s.Get(ctx, "key-miss")
	assert.True(t, errors.Is(err, fetchcache.ErrNotFound))

	require.NoError(t, s.Delete(ctx, "teams_1"))
	_, err = s.Get(ctx, "teams_1")
	assert.True(t, errors.Is(err, fetchcache.ErrNotFound))
}

func TestRetentionCleanupIntegration(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	s, err := New(ctx, db, &Config{
		Retention: time.Nanosecond,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Clear(ctx)
	})

	require.NoError(t, s.Set(ctx, "short-lived", &fetchcache.Entry{
		Value:    json.RawMessage(`1`),
		StoredAt: time.Now(),
	}))

	require.NoError(t, deleteExpiredEntries(ctx, db, time.Now))

	_, err = s.Get(ctx, "short-lived")
	assert.True(t, errors.Is(err, fetchcache.ErrNotFound))
}
