package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	fetchcache "github.com/rkRashik/go-fetch-cache"
	"github.com/rkRashik/go-fetch-cache/stores"
)

// Config defines the configuration options for the DynamoDB store.
type Config struct {
	DeleteExpiredEntries bool // Controls if the retain_until TTL attribute is put on items to allow automatic deletion by DynamoDB

	Retention time.Duration // How long an entry stays in the table. This is independent of the read-time TTL the client applies.
	Table     string
}

// Store implements the fetchcache.Store interface using Amazon DynamoDB as
// the storage backend.
type Store struct {
	client *dynamodb.Client

	table     string
	retention time.Duration
	deleteTTL bool
	now       func() time.Time
}

type storedEntry struct {
	Key         string `json:"key" dynamodbav:"key"`
	Value       []byte `json:"value" dynamodbav:"value"`
	StoredAt    int64  `json:"stored_at" dynamodbav:"stored_at"`
	RetainUntil int64  `json:"retain_until" dynamodbav:"retain_until,omitempty"`
}

// Get retrieves an entry from DynamoDB by its key. Returns
// fetchcache.ErrNotFound if no item exists.
func (p *Store) Get(ctx context.Context, k string) (*fetchcache.Entry, error) {
	key, err := attributevalue.Marshal(k)
	if err != nil {
		return nil, err
	}

	output, err := p.client.GetItem(ctx, &dynamodb.GetItemInput{
		Key: map[string]types.AttributeValue{
			"key": key,
		},
		ConsistentRead: aws.Bool(true),
		TableName:      aws.String(p.table),
	})
	if err != nil {
		return nil, err
	}

	if output.Item == nil {
		return nil, fetchcache.ErrNotFound
	}

	var item storedEntry
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, err
	}

	return &fetchcache.Entry{
		Value:    item.Value,
		StoredAt: time.Unix(0, item.StoredAt).UTC(),
	}, nil
}

// Set stores an entry in DynamoDB, unconditionally overwriting any existing
// item for the key.
func (c *Store) Set(ctx context.Context, k string, entry *fetchcache.Entry) error {
	i := storedEntry{
		Key:      k,
		Value:    entry.Value,
		StoredAt: entry.StoredAt.UTC().UnixNano(),
	}
	if c.deleteTTL {
		i.RetainUntil = c.now().UTC().Add(c.retention).Unix()
	}

	av, err := attributevalue.MarshalMap(i)
	if err != nil {
		return err
	}

	input := dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      av,
	}

	_, err = c.client.PutItem(ctx, &input)
	return err
}

func (c *Store) Delete(ctx context.Context, k string) error {
	key, err := attributevalue.Marshal(k)
	if err != nil {
		return err
	}

	_, err = c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			"key": key,
		},
	})
	return err
}

// Clear scans the table and deletes every item. Expensive on large tables;
// intended for teardown and tests, not steady-state use.
func (c *Store) Clear(ctx context.Context) error {
	paginator := dynamodb.NewScanPaginator(c.client, &dynamodb.ScanInput{
		TableName:            aws.String(c.table),
		ProjectionExpression: aws.String("#k"),
		ExpressionAttributeNames: map[string]string{
			"#k": "key",
		},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}

		for _, item := range page.Items {
			if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(c.table),
				Key: map[string]types.AttributeValue{
					"key": item["key"],
				},
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// New creates a new DynamoDB store with the provided configuration.
// It validates the configuration and sets default values where appropriate.
// Returns an error if the client is nil or if the configuration is invalid.
func New(ctx context.Context, client *dynamodb.Client, config *Config) (*Store, error) {
	if client == nil {
		return nil, stores.ValidationError{
			Reason: "nil client",
		}
	}

	if config == nil {
		return nil, stores.ValidationError{
			Reason: "nil config",
		}
	}

	var retention time.Duration
	if config.Retention == 0 {
		retention = stores.DefaultRetention
	} else {
		retention = config.Retention
	}

	return &Store{
		client: client,

		table:     config.Table,
		retention: retention,
		deleteTTL: config.DeleteExpiredEntries,
		now:       time.Now,
	}, nil
}
