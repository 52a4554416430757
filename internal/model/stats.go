package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenreSales holds the total quantity sold attributed to one genre.
type GenreSales struct {
	GenreID  uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity int64     `json:"quantity"`
}

// LineGenre is one order line attributed to the current genre of its book,
// as streamed to the statistics aggregator.
type LineGenre struct {
	GenreID   uuid.UUID
	GenreName string
	Quantity  int64
}

// StatsSummary is the sales statistics report derived from the full order
// history. WorstSellingGenre is nil unless at least two distinct genres have
// recorded sales.
type StatsSummary struct {
	TotalOrders       int64           `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	BestSellingGenre  *GenreSales     `json:"bestSellingGenre"`
	WorstSellingGenre *GenreSales     `json:"worstSellingGenre"`
}
