package main

import (
	"context"
	"log"
	"time"

	"ticket-ledger/config"
	"ticket-ledger/internal/cache"
	"ticket-ledger/internal/clock"
	"ticket-ledger/internal/database"
	"ticket-ledger/internal/handler"
	"ticket-ledger/internal/ledger"
	"ticket-ledger/internal/queue"
	"ticket-ledger/internal/repository"
	"ticket-ledger/internal/service"
	"ticket-ledger/internal/worker"
	"ticket-ledger/migrations"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(context.Background(), pool); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	clk := clock.NewSlot(
		time.Unix(cfg.Ledger.GenesisUnix, 0),
		time.Duration(cfg.Ledger.SlotSeconds)*time.Second,
	)

	eventRepo := repository.NewEventRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	authRepo := repository.NewAuthCodeRepository(pool)
	holdingsRepo := repository.NewHoldingsRepository(pool)
	journalRepo := repository.NewJournalRepository(pool)

	payments := ledger.NewAccountLedger(pool)
	availability := cache.NewAvailabilityCache(rdb)

	transferQueue, err := queue.NewRedisStreamTransferQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize transfer queue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	journalWorker := worker.NewJournalWorker(journalRepo, transferQueue)
	if err := journalWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start journal worker: %v", err)
	}

	registryService := service.NewRegistryService(pool, eventRepo, availability, clk)
	ticketingService := service.NewTicketingService(
		pool, eventRepo, ticketRepo, authRepo, holdingsRepo,
		payments, availability, transferQueue, clk,
	)
	marketplaceService := service.NewMarketplaceService(
		pool, eventRepo, ticketRepo, holdingsRepo,
		payments, transferQueue, clk,
	)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewEventHandler(registryService).RegisterRoutes(router)
	handler.NewTicketHandler(ticketingService).RegisterRoutes(router)
	handler.NewMarketplaceHandler(marketplaceService).RegisterRoutes(router)
	handler.NewAccountHandler(payments).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
