package core_test

import (
	"context"
	"os"
	"testing"

	"vending-agent/internal/db"
	"vending-agent/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to TEST_DATABASE_URL, applies migrations, and resets the data to:
// customer 1 (Ada), customer 2 (Grace), soda 1 Coca-Cola 1.50 x10, soda 2 Sprite 1.25 x5.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE customer_transactions, sodas, customers RESTART IDENTITY CASCADE;

		INSERT INTO customers (name, email, password_hash) VALUES
		('Ada', 'ada@example.com', 'x'),
		('Grace', 'grace@example.com', 'x');

		INSERT INTO sodas (name, price, quantity) VALUES
		('Coca-Cola', 1.50, 10),
		('Sprite', 1.25, 5);
	`)
	if err != nil {
		pool.Close()
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func stockOf(t *testing.T, pool *pgxpool.Pool, sodaID int) int {
	t.Helper()
	var qty int
	if err := pool.QueryRow(context.Background(), "SELECT quantity FROM sodas WHERE id = $1", sodaID).Scan(&qty); err != nil {
		t.Fatalf("read stock of soda %d: %v", sodaID, err)
	}
	return qty
}
