package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	BookIDs   []uuid.UUID `json:"bookIds,omitempty"`
	Available *int        `json:"available,omitempty"`
	Requested *int        `json:"requested,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeDuplicateLineItem = "DUPLICATE_LINE_ITEM"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeBookNotFound      = "BOOK_NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeStockConflict     = "CONCURRENT_STOCK_CONFLICT"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeCommitFailed      = "COMMIT_FAILED"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyOrder        = NewDomainError(ErrCodeInvalidRequest, "Order must contain at least one line")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidRequest, "Quantity must be greater than zero")
	ErrInvalidBookID     = NewDomainError(ErrCodeInvalidRequest, "Book ID is required on every line")
	ErrInvalidUserID     = NewDomainError(ErrCodeInvalidRequest, "User ID is required")
	ErrDuplicateLineItem = NewDomainError(ErrCodeDuplicateLineItem, "A book may appear at most once per order")
	ErrUserNotFound      = NewDomainError(ErrCodeUserNotFound, "Purchaser not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrStockConflict     = NewDomainError(ErrCodeStockConflict, "Stock changed while committing, retry the order")
	ErrCommitFailed      = NewDomainError(ErrCodeCommitFailed, "Order could not be committed")
	// ErrIdempotentReplay signals that an order carrying the same
	// idempotency key was already committed.
	ErrIdempotentReplay = NewDomainError(ErrCodeCommitFailed, "Order already committed under this idempotency key")
)

// BookNotFoundError reports the book ids in a request that did not resolve
// to a live catalogue entry.
type BookNotFoundError struct {
	BookIDs []uuid.UUID
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("%d book(s) not found", len(e.BookIDs))
}

// InsufficientStockError reports a line whose quantity exceeds the book's
// available stock.
type InsufficientStockError struct {
	BookID    uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %s: available %d, requested %d",
		e.BookID, e.Available, e.Requested)
}
