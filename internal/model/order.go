package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a committed purchase. Orders are created only by a
// successful transaction commit and are never mutated afterwards.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"userId" db:"user_id"`
	TotalPrice     decimal.Decimal `json:"totalPrice" db:"total_price"`
	IdempotencyKey *string         `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// OrderLine is one book-and-quantity entry within an order. UnitPrice is the
// price snapshot taken at purchase time; later price changes on the book do
// not alter it.
type OrderLine struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	BookID    uuid.UUID       `json:"bookId" db:"book_id"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// Subtotal returns the line's contribution to the order total.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderRequest represents the request payload for submitting an order.
type OrderRequest struct {
	UserID uuid.UUID          `json:"userId"`
	Lines  []OrderLineRequest `json:"lines"`
}

// OrderLineRequest represents a single line in an order request.
type OrderLineRequest struct {
	BookID   uuid.UUID `json:"bookId"`
	Quantity int       `json:"quantity"`
}

// OrderLineDetail is an order line joined with catalogue data for read
// projections.
type OrderLineDetail struct {
	BookID    uuid.UUID       `json:"bookId"`
	Title     string          `json:"title"`
	GenreName string          `json:"genre,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDetail is the fully materialised view of an order and its lines.
type OrderDetail struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"userId"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	CreatedAt  time.Time         `json:"createdAt"`
	Lines      []OrderLineDetail `json:"lines"`
}

// OrderSummary is a single row of the paged order listing.
type OrderSummary struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	LineCount  int             `json:"lineCount"`
	CreatedAt  time.Time       `json:"createdAt"`
}
