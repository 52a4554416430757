package service

import (
	"context"

	"bookshop/internal/model"

	"github.com/google/uuid"
)

// OrderService defines the order transaction operations.
type OrderService interface {
	// Create validates a purchase request against the catalogue and
	// commits it as one atomic unit, returning the fully materialised
	// order. Validation failures leave no trace in storage.
	Create(ctx context.Context, req *model.OrderRequest, idempotencyKey string) (*model.OrderDetail, error)

	// GetByID retrieves an order with its lines and catalogue data.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// List retrieves a page of order summaries, newest first.
	List(ctx context.Context, page, size int) ([]model.OrderSummary, error)
}

// StatsService defines the sales statistics operations.
type StatsService interface {
	// Summarize derives order counts, the average order value and the
	// per-genre sales ranking from the whole committed order history.
	Summarize(ctx context.Context) (*model.StatsSummary, error)
}
