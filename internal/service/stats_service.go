package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"bookshop/internal/model"
	"bookshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// statsService implements StatsService as a read-only, single-pass reduction
// over the order history. It takes no locks and tolerates commits happening
// while it runs.
type statsService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewStatsService creates a new statistics service.
func NewStatsService(orderRepo repository.OrderRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "stats").Logger(),
	}
}

// Summarize streams the order lines once, accumulating per-genre quantities,
// and combines them with the global order totals. Genre credit follows each
// book's current genre: recategorising or soft-deleting a book after a sale
// moves or drops its historical quantities.
func (s *statsService) Summarize(ctx context.Context) (*model.StatsSummary, error) {
	totalOrders, totalValue, err := s.orderRepo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read order totals: %w", err)
	}

	average := decimal.Zero
	if totalOrders > 0 {
		average = totalValue.Div(decimal.NewFromInt(totalOrders)).Round(2)
	}

	acc := make(map[uuid.UUID]*model.GenreSales)
	err = s.orderRepo.StreamLineGenres(ctx, func(lg model.LineGenre) error {
		g, ok := acc[lg.GenreID]
		if !ok {
			g = &model.GenreSales{GenreID: lg.GenreID, Name: lg.GenreName}
			acc[lg.GenreID] = g
		}
		g.Quantity += lg.Quantity
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate genre sales: %w", err)
	}

	ranked := make([]*model.GenreSales, 0, len(acc))
	for _, g := range acc {
		ranked = append(ranked, g)
	}
	// Quantity descending, genre id ascending on ties, so the ranking is
	// reproducible across runs.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return bytes.Compare(ranked[i].GenreID[:], ranked[j].GenreID[:]) < 0
	})

	summary := &model.StatsSummary{
		TotalOrders:       totalOrders,
		AverageOrderValue: average,
	}
	if len(ranked) > 0 {
		summary.BestSellingGenre = ranked[0]
	}
	// A single selling genre is both top and bottom of the list; the
	// report only names a worst seller once there are at least two.
	if len(ranked) >= 2 {
		summary.WorstSellingGenre = ranked[len(ranked)-1]
	}

	s.logger.Debug().
		Int64("total_orders", totalOrders).
		Int("genres_ranked", len(ranked)).
		Msg("statistics summarised")

	return summary, nil
}
