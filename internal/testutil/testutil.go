package testutil

import (
	"context"
	"fmt"
	"log"

	"ticket-ledger/config"
	"ticket-ledger/internal/database"
	"ticket-ledger/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Setup connects to the test database and test Redis, applies migrations and
// returns a cleanup func.
func Setup() (*pgxpool.Pool, *redis.Client, func(), error) {
	cfg := config.LoadTestConfig()

	testDB, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize test database: %v", err)
	}

	if err := migrations.Apply(context.Background(), testDB); err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to apply migrations: %v", err)
	}

	testRdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize redis: %v", err)
	}

	cleanup := func() {
		testDB.Close()
		testRdb.Close()
	}

	return testDB, testRdb, cleanup, nil
}

// Truncate wipes every registry table between test cases.
func Truncate(pool *pgxpool.Pool) {
	_, err := pool.Exec(context.Background(), `
		TRUNCATE transfer_journal, ticket_holdings, auth_codes, tickets,
			events, organizer_counters, accounts
	`)
	if err != nil {
		log.Printf("truncate failed: %v", err)
	}
}
