//go:build !integration

package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/rkRashik/go-fetch-cache/stores"
)

func TestNewDynamoDBStore(t *testing.T) {
	tests := []struct {
		name          string
		client        *dynamodb.Client
		config        *Config
		expectedStore *Store
		expectErr     bool
	}{
		{
			name:   "nil client returns error",
			client: nil,
			config: &Config{
				Table:     "test-table",
				Retention: time.Hour,
			},
			expectedStore: nil,
			expectErr:     true,
		},
		{
			name:   "zero retention uses default",
			client: &dynamodb.Client{},
			config: &Config{
				Table:     "test-table",
				Retention: 0,
			},
			expectedStore: &Store{
				client:    &dynamodb.Client{},
				table:     "test-table",
				retention: stores.DefaultRetention,
				now:       time.Now,
			},
			expectErr: false,
		},
		{
			name:   "custom retention",
			client: &dynamodb.Client{},
			config: &Config{
				Table:     "test-table",
				Retention: time.Hour,
			},
			expectedStore: &Store{
				client:    &dynamodb.Client{},
				table:     "test-table",
				retention: time.Hour,
				now:       time.Now,
			},
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(context.Background(), tt.client, tt.config)

			if tt.expectErr {
				var ve stores.ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected validation error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error %v", err)
			}

			if tt.expectedStore == nil {
				if store != nil {
					t.Error("expected nil store")
				}
				return
			}

			if store.table != tt.expectedStore.table {
				t.Errorf("expected table %s, got %s", tt.expectedStore.table, store.table)
			}

			if store.retention != tt.expectedStore.retention {
				t.Errorf("expected retention %v, got %v", tt.expectedStore.retention, store.retention)
			}
		})
	}
}
