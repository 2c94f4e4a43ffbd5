//go:build integration

package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fetchcache "github.com/rkRashik/go-fetch-cache"
)

const testTable = "fetch-cache-test"

func setup(t *testing.T) *dynamodb.Client {
	t.Log("setup called")

	awsconfig, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion("local"))
	require.NoError(t, err)

	c := dynamodb.NewFromConfig(awsconfig)

	require.NoError(t, createTable(context.Background(), c, testTable))

	return c
}

func cleanup(t *testing.T, c *dynamodb.Client) {
	t.Log("cleanup called")

	if _, err := c.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{
		TableName: aws.String(testTable),
	}); err != nil {
		t.Log(err)
	}
}

func TestRoundTripIntegration(t *testing.T) {
	c := setup(t)
	t.Cleanup(func() {
		cleanup(t, c)
	})

	ctx := context.Background()

	s, err := New(ctx, c, &Config{
		Table:     testTable,
		Retention: 1 * time.Minute,
	})
	require.NoError(t, err)

	storedAt := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set(ctx, "teams_1", &fetchcache.Entry{
		Value:    json.RawMessage(`{"teams":[]}`),
		StoredAt: storedAt,
	}))

	got, err := s.Get(ctx, "teams_1")
	require.NoError(t, err)
	assert.Equal(t, `{"teams":[]}`, string(got.Value))
	assert.True(t, got.StoredAt.Equal(storedAt))

	_, err = s.Get(ctx, "key-miss")
	assert.True(t, errors.Is(err, fetchcache.ErrNotFound))

	require.NoError(t, s.Delete(ctx, "teams_1"))
	_, err = s.Get(ctx, "teams_1")
	assert.True(t, errors.Is(err, fetchcache.ErrNotFound))
}

func TestClearIntegration(t *testing.T) {
	c := setup(t)
	t.Cleanup(func() {
		cleanup(t, c)
	})

	ctx := context.Background()

	s, err := New(ctx, c, &Config{Table: testTable})
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(ctx, k, &fetchcache.Entry{
			Value:    json.RawMessage(`1`),
			StoredAt: time.Now(),
		}))
	}

	require.NoError(t, s.Clear(ctx))

	for _, k := range []string{"a", "b", "c"} {
		_, err := s.Get(ctx, k)
		assert.True(t, errors.Is(err, fetchcache.ErrNotFound))
	}
}
