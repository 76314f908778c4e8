package repository

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-ticket-sales-engine/config"
	"go-ticket-sales-engine/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}

	if err := testDB.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping test database: %v", err)
	}

	log.Println("Test database connected successfully")
	log.Println("Running repository tests...")

	code := m.Run()

	testDB.Close()
	log.Println("Test database closed")

	os.Exit(code)
}

func setupTestWithTruncate(t *testing.T) func() {
	t.Helper()
	ctx := context.Background()

	_, err := testDB.Exec(ctx, "TRUNCATE ticket_tiers, promo_codes, tickets, ticket_line_items, payment_transactions, waitlist_entries RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	return func() {}
}

func getTestDB() *pgxpool.Pool {
	if testDB == nil {
		panic("testDB is not initialized. Make sure TestMain has run.")
	}
	return testDB
}

func createTestTier(t *testing.T, eventID int, name, price string, capacity, soldCount, maxPerOrder int) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO ticket_tiers (event_id, name, price, capacity, sold_count, max_per_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query,
		eventID, name, decimal.RequireFromString(price), capacity, soldCount, maxPerOrder,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test tier: %v", err)
	}

	return id
}

func createTestPromo(t *testing.T, eventID int, code, percent string, usageCap *int, usageCount int, expiresAt *time.Time) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO promo_codes (event_id, code, discount_percent, usage_cap, usage_count, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query,
		eventID, code, decimal.RequireFromString(percent), usageCap, usageCount, expiresAt,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test promo: %v", err)
	}

	return id
}

func createTestWaitlistEntry(t *testing.T, eventID int, tierID *int, name, email string, userID *int, position int) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO waitlist_entries (event_id, tier_id, name, email, user_id, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query, eventID, tierID, name, email, userID, position).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test waitlist entry: %v", err)
	}

	return id
}

func intPtr(v int) *int { return &v }
