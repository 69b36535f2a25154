package service

import (
	"context"
	"log"
	"os"
	"testing"

	"ticket-ledger/internal/cache"
	"ticket-ledger/internal/clock"
	"ticket-ledger/internal/ledger"
	"ticket-ledger/internal/model"
	"ticket-ledger/internal/queue"
	"ticket-ledger/internal/repository"
	"ticket-ledger/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	testDB  *pgxpool.Pool
	testRdb *redis.Client
)

func TestMain(m *testing.M) {
	var cleanup func()
	var err error
	testDB, testRdb, cleanup, err = testutil.Setup()
	if err != nil {
		log.Fatalf("Failed to set up test environment: %v", err)
	}

	log.Println("Running service tests...")

	code := m.Run()
	cleanup()
	os.Exit(code)
}

// testStack wires real repositories against the test database with a manual
// clock and the in-memory transfer queue.
type testStack struct {
	registry    RegistryService
	ticketing   TicketingService
	marketplace MarketplaceService
	payments    ledger.PaymentLedger
	holdings    repository.HoldingsRepository
	transfers   queue.TransferQueue
	clock       *clock.Manual
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	testutil.Truncate(testDB)
	require.NoError(t, testRdb.FlushDB(context.Background()).Err())

	clk := clock.NewManual(100)
	eventRepo := repository.NewEventRepository(testDB)
	ticketRepo := repository.NewTicketRepository(testDB)
	authRepo := repository.NewAuthCodeRepository(testDB)
	holdingsRepo := repository.NewHoldingsRepository(testDB)
	payments := ledger.NewAccountLedger(testDB)
	availability := cache.NewAvailabilityCache(testRdb)
	transfers := queue.NewTransferQueue(100)

	return &testStack{
		registry:    NewRegistryService(testDB, eventRepo, availability, clk),
		ticketing:   NewTicketingService(testDB, eventRepo, ticketRepo, authRepo, holdingsRepo, payments, availability, transfers, clk),
		marketplace: NewMarketplaceService(testDB, eventRepo, ticketRepo, holdingsRepo, payments, transfers, clk),
		payments:    payments,
		holdings:    holdingsRepo,
		transfers:   transfers,
		clock:       clk,
	}
}

func defaultEventParams() model.CreateEventParams {
	return model.CreateEventParams{
		Name:          "Summer Concert 2026",
		Description:   "Outdoor live show",
		Venue:         "Riverside Arena",
		EventHeight:   200,
		BasePrice:     100,
		Capacity:      10,
		ResaleAllowed: true,
		ResaleCeiling: 150,
	}
}

// createEvent creates an event for org under the stack's clock at height 100.
func (s *testStack) createEvent(t *testing.T, org model.Identity, mutate func(*model.CreateEventParams)) *model.Event {
	t.Helper()
	params := defaultEventParams()
	if mutate != nil {
		mutate(&params)
	}
	event, err := s.registry.CreateEvent(context.Background(), org, params)
	require.NoError(t, err)
	return event
}

func (s *testStack) fund(t *testing.T, owner model.Identity, amount int64) {
	t.Helper()
	require.NoError(t, s.payments.Deposit(context.Background(), amount, owner))
}

func (s *testStack) balance(t *testing.T, owner model.Identity) int64 {
	t.Helper()
	balance, err := s.payments.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	return balance
}

// ownedTickets asserts the ownership index matches exactly.
func (s *testStack) ownedTickets(t *testing.T, owner, org model.Identity, eventID int64) []int64 {
	t.Helper()
	ids, err := s.holdings.ListByOwner(context.Background(), owner, org, eventID)
	require.NoError(t, err)
	return ids
}
