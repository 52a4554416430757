package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book represents a title in the shop catalogue. A book with a non-nil
// DeletedAt is invisible to new orders but stays referenced by historical
// order lines.
type Book struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Writer          string          `json:"writer" db:"writer"`
	Publisher       string          `json:"publisher" db:"publisher"`
	PublicationYear int             `json:"publicationYear" db:"publication_year"`
	Price           decimal.Decimal `json:"price" db:"price"`
	StockQuantity   int             `json:"stockQuantity" db:"stock_quantity"`
	GenreID         uuid.UUID       `json:"genreId" db:"genre_id"`
	DeletedAt       *time.Time      `json:"-" db:"deleted_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// Genre represents a book category.
type Genre struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// User represents a registered purchaser.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
