package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	fetchcache "github.com/rkRashik/go-fetch-cache"
	"github.com/rkRashik/go-fetch-cache/stores/postgres"
)

func main() {
	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	db, err := sql.Open("postgres", "postgresql://localhost:5455/postgresDB?user=postgresUser&password=postgresPW&sslmode=disable")
	if err != nil {
		panic(err)
	}

	store, err := postgres.New(ctx, db, &postgres.Config{
		DeleteExpiredEntries: true,
	})
	if err != nil {
		panic(err)
	}

	client := fetchcache.New(store, nil, &fetchcache.Config{
		TTL:     30 * time.Second,
		Timeout: 10 * time.Second,
	}, nil, slog.Default())

	data, err := client.FetchCached(ctx, fetchcache.Request{
		Key: fetchcache.Key("/api/tournaments/", nil),
		URL: "http://localhost:8000/api/tournaments/",
	})
	if err != nil {
		if fetchcache.IsCancelled(err) {
			return
		}
		panic(err)
	}

	fmt.Println(string(data))

	<-ctx.Done()
}
