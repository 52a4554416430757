package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookshop/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, connects a pool and runs
// the embedded schema migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bookshop_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixture holds the ids of the seeded catalogue rows.
type Fixture struct {
	UserID uuid.UUID
	GenreG uuid.UUID
	GenreH uuid.UUID
	BookG1 uuid.UUID // genre G, price 10.00, stock 5
	BookG2 uuid.UUID // genre G, price 15.00, stock 10
	BookH1 uuid.UUID // genre H, price 20.00, stock 8
}

// SeedCatalog inserts a purchaser, two genres and three books.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) Fixture {
	t.Helper()

	ctx := context.Background()
	f := Fixture{
		UserID: uuid.New(),
		GenreG: uuid.New(),
		GenreH: uuid.New(),
		BookG1: uuid.New(),
		BookG2: uuid.New(),
		BookH1: uuid.New(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`,
		f.UserID, "Test Buyer", fmt.Sprintf("%s@example.com", f.UserID))
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	genres := []struct {
		id   uuid.UUID
		name string
	}{
		{f.GenreG, "Science Fiction"},
		{f.GenreH, "History"},
	}
	for _, g := range genres {
		if _, err := pool.Exec(ctx,
			`INSERT INTO genres (id, name) VALUES ($1, $2)`, g.id, g.name); err != nil {
			t.Fatalf("failed to seed genre %s: %v", g.name, err)
		}
	}

	books := []struct {
		id      uuid.UUID
		title   string
		price   string
		stock   int
		genreID uuid.UUID
	}{
		{f.BookG1, "The Dispossessed", "10.00", 5, f.GenreG},
		{f.BookG2, "Solaris", "15.00", 10, f.GenreG},
		{f.BookH1, "The Guns of August", "20.00", 8, f.GenreH},
	}
	for _, b := range books {
		_, err := pool.Exec(ctx,
			`INSERT INTO books (id, title, writer, publisher, publication_year, price, stock_quantity, genre_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			b.id, b.title, "Writer", "Publisher", 1970, b.price, b.stock, b.genreID)
		if err != nil {
			t.Fatalf("failed to seed book %s: %v", b.title, err)
		}
	}

	return f
}

// StockOf reads a book's current stock quantity directly.
func StockOf(t *testing.T, pool *pgxpool.Pool, bookID uuid.UUID) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM books WHERE id = $1`, bookID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock for %s: %v", bookID, err)
	}
	return stock
}

// CountOrders counts committed orders directly.
func CountOrders(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	return n
}

// ResetDatabase removes all rows so the next subtest can seed from scratch.
func ResetDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"order_lines", "orders", "books", "genres", "users"} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Fatalf("failed to clean table %s: %v", table, err)
		}
	}
}
