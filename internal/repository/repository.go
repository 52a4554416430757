package repository

import (
	"context"

	"bookshop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogRepository defines read access to the book catalogue as seen by new
// orders. Soft-deleted books and genres are invisible here.
type CatalogRepository interface {
	// FindBooksByIDs retrieves the live books matching the given IDs in a
	// single batched lookup. IDs that do not resolve are simply absent
	// from the result.
	FindBooksByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Book, error)

	// FindGenre retrieves a live genre by its ID, or nil if it does not
	// exist.
	FindGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error)
}

// UserRepository defines identity lookup for purchasers.
type UserRepository interface {
	// FindUser retrieves a user by ID, or nil if it does not exist.
	FindUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// OrderRepository defines durable storage of orders and their lines.
type OrderRepository interface {
	// Commit persists the order, its lines and the matching stock
	// decrements as one atomic unit. A reader never observes the order
	// without its lines, nor a decrement without the order. Returns
	// model.ErrStockConflict when a concurrent commit drained stock
	// first, and model.ErrIdempotentReplay when an order with the same
	// idempotency key already exists. Nothing is persisted on error.
	Commit(ctx context.Context, order *model.Order, lines []model.OrderLine) error

	// GetByID retrieves an order joined with its lines and catalogue
	// data, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// GetByIdempotencyKey retrieves the order previously committed under
	// the given idempotency key, or nil if there is none.
	GetByIdempotencyKey(ctx context.Context, key string) (*model.OrderDetail, error)

	// List retrieves order summaries, newest first.
	List(ctx context.Context, limit, offset int) ([]model.OrderSummary, error)

	// Totals returns the committed order count and the sum of all order
	// totals.
	Totals(ctx context.Context) (int64, decimal.Decimal, error)

	// StreamLineGenres invokes fn once per order line joined to the
	// current genre of its book, without materialising the full history.
	// Lines of soft-deleted books or genres are skipped.
	StreamLineGenres(ctx context.Context, fn func(model.LineGenre) error) error
}
