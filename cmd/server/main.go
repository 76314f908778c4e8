package main

import (
	"context"
	"log"

	"go-ticket-sales-engine/config"
	"go-ticket-sales-engine/internal/cache"
	"go-ticket-sales-engine/internal/database"
	"go-ticket-sales-engine/internal/handler"
	"go-ticket-sales-engine/internal/inventory"
	"go-ticket-sales-engine/internal/pricing"
	"go-ticket-sales-engine/internal/queue"
	"go-ticket-sales-engine/internal/repository"
	"go-ticket-sales-engine/internal/service"
	"go-ticket-sales-engine/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// 預設團體折扣級距，買家拿符合條件的最高單一級距，不疊加
func defaultGroupDiscountTable() *pricing.GroupDiscountTable {
	table, err := pricing.NewGroupDiscountTable([]pricing.GroupDiscountRule{
		{MinQuantity: 5, DiscountPercent: decimal.NewFromInt(5)},
		{MinQuantity: 10, DiscountPercent: decimal.NewFromInt(10)},
		{MinQuantity: 20, DiscountPercent: decimal.NewFromInt(15)},
	})
	if err != nil {
		log.Fatalf("Invalid group discount table: %v", err)
	}
	return table
}

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	tierRepo := repository.NewTierRepository(pool)
	promoRepo := repository.NewPromoRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	waitlistRepo := repository.NewWaitlistRepository(pool)

	availCache := cache.NewAvailabilityCache(rdb)
	restockQueue, err := queue.NewRedisStreamRestockQueue(rdb, cfg.App.RestockConsumerID, nil)
	if err != nil {
		log.Fatalf("Failed to initialize restock queue: %v", err)
	}

	ledger := inventory.NewLedger(pool, tierRepo)
	validator := pricing.NewPromoValidator(promoRepo)
	calculator := pricing.NewCalculator(defaultGroupDiscountTable(), cfg.App.ServiceFeePercent)

	purchaseService := service.NewPurchaseService(
		pool, tierRepo, promoRepo, ticketRepo, paymentRepo,
		ledger, validator, calculator, availCache, restockQueue,
	)
	waitlistService := service.NewWaitlistService(pool, waitlistRepo)
	tierService := service.NewTierService(tierRepo, availCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := worker.NewWaitlistNotifier(waitlistRepo, restockQueue)
	if err := notifier.Start(ctx); err != nil {
		log.Fatalf("Failed to start waitlist notifier: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewTierHandler(tierService).RegisterRoutes(router)
	handler.NewPurchaseHandler(purchaseService).RegisterRoutes(router)
	handler.NewWaitlistHandler(waitlistService).RegisterRoutes(router)

	router.Run()
}
