package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log"
	"time"

	_ "github.com/lib/pq"

	fetchcache "github.com/rkRashik/go-fetch-cache"
	"github.com/rkRashik/go-fetch-cache/stores"
)

var (
	// ErrPingFailed is returned if the initial ping to the database returns an error
	ErrPingFailed = errors.New("ping returned error")
)

var (
	//go:embed create_table.sql
	queryCreateTable string
	//go:embed fetch_by_key.sql
	queryFetchByKey string
	//go:embed upsert_entry.sql
	queryUpsertEntry string
	//go:embed delete_entry.sql
	queryDeleteEntry string
	//go:embed clear_entries.sql
	queryClearEntries string
	//go:embed delete_expired.sql
	queryDeleteExpired string
)

// Config defines the configuration options for the PostgreSQL store.
type Config struct {
	// DeleteExpiredEntries enables cleanup of entries past their retention
	// through a background task.
	DeleteExpiredEntries bool

	// RetentionTaskTimer defines the interval at which the cleanup task runs.
	// Shorter durations may impact database performance.
	RetentionTaskTimer time.Duration

	// Retention defines how long entries stay in the database before the
	// cleanup task may remove them. This is independent of the read-time TTL
	// the client applies.
	Retention time.Duration
}

// Store implements the fetchcache.Store interface using PostgreSQL as the
// storage backend, for deployments that want the fetch cache to survive
// process restarts.
type Store struct {
	db *sql.DB

	retention time.Duration
	now       func() time.Time
}

// Get retrieves an entry from PostgreSQL by its key.
// Returns fetchcache.ErrNotFound if the entry doesn't exist.
func (p *Store) Get(ctx context.Context, key string) (*fetchcache.Entry, error) {
	stmt, err := p.db.PrepareContext(ctx, queryFetchByKey)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var value []byte
	var storedAt time.Time
	if err := stmt.QueryRowContext(ctx, key).Scan(&value, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fetchcache.ErrNotFound
		}
		return nil, err
	}

	return &fetchcache.Entry{Value: value, StoredAt: storedAt}, nil
}

// Set stores an entry, unconditionally overwriting any existing row for the
// key. The entry's value is already JSON, so it is persisted verbatim.
func (p *Store) Set(ctx context.Context, key string, entry *fetchcache.Entry) error {
	stmt, err := p.db.PrepareContext(ctx, queryUpsertEntry)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, key, []byte(entry.Value), entry.StoredAt.UTC(),
		p.now().UTC().Add(p.retention))
	return err
}

func (p *Store) Delete(ctx context.Context, key string) error {
	stmt, err := p.db.PrepareContext(ctx, queryDeleteEntry)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, key)
	return err
}

func (p *Store) Clear(ctx context.Context) error {
	stmt, err := p.db.PrepareContext(ctx, queryClearEntries)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx)
	return err
}

func createTable(ctx context.Context, db *sql.DB) error {
	stmt, err := db.PrepareContext(ctx, queryCreateTable)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx)
	return err
}

func deleteExpiredEntries(ctx context.Context, db *sql.DB, now func() time.Time) error {
	stmt, err := db.PrepareContext(ctx, queryDeleteExpired)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, now().UTC())
	return err
}

func retentionTask(ctx context.Context, db *sql.DB, interval time.Duration, now func() time.Time) {
	t := time.NewTimer(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := deleteExpiredEntries(ctx, db, now); err != nil {
				log.Println(err)
			}
			_ = t.Reset(interval)
		}
	}
}

// New creates a new PostgreSQL store with the provided configuration.
// It verifies the database connection, creates the necessary table structure,
// and optionally starts the cleanup task for entries past their retention.
//
// Returns an error if:
// - The database connection test fails
// - Table creation fails
func New(ctx context.Context, db *sql.DB, config *Config) (*Store, error) {
	if db == nil {
		return nil, stores.ValidationError{
			Reason: "nil db",
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(ErrPingFailed, err)
	}

	if err := createTable(ctx, db); err != nil {
		return nil, err
	}

	c := Config{}
	if config != nil {
		c = *config
	}

	if c.Retention == 0 {
		c.Retention = stores.DefaultRetention
	}
	if c.RetentionTaskTimer == 0 {
		c.RetentionTaskTimer = stores.DefaultRetentionTaskTimer
	}

	if c.DeleteExpiredEntries {
		go retentionTask(ctx, db, c.RetentionTaskTimer, time.Now)
	}

	return &Store{
		db: db,

		retention: c.Retention,
		now:       time.Now,
	}, nil
}
