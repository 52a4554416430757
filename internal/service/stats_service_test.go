package service

import (
	"context"
	"testing"

	"bookshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// streamLines wires a canned set of line/genre rows into the mock's
// StreamLineGenres callback.
func streamLines(repo *MockOrderRepository, lines []model.LineGenre) {
	repo.On("StreamLineGenres", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(model.LineGenre) error)
			for _, lg := range lines {
				if err := fn(lg); err != nil {
					return
				}
			}
		}).
		Return(nil)
}

func TestStatsService_Summarize_EmptyHistory(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewStatsService(repo, zerolog.Nop())

	repo.On("Totals", mock.Anything).Return(int64(0), decimal.Zero, nil)
	streamLines(repo, nil)

	summary, err := svc.Summarize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalOrders)
	assert.True(t, summary.AverageOrderValue.IsZero())
	assert.Nil(t, summary.BestSellingGenre)
	assert.Nil(t, summary.WorstSellingGenre)
}

func TestStatsService_Summarize_SingleGenreHasNoWorstSeller(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewStatsService(repo, zerolog.Nop())

	genreID := uuid.New()
	repo.On("Totals", mock.Anything).Return(int64(2), decimal.RequireFromString("80.00"), nil)
	streamLines(repo, []model.LineGenre{
		{GenreID: genreID, GenreName: "Fantasy", Quantity: 2},
		{GenreID: genreID, GenreName: "Fantasy", Quantity: 3},
	})

	summary, err := svc.Summarize(context.Background())

	require.NoError(t, err)
	require.NotNil(t, summary.BestSellingGenre)
	assert.Equal(t, "Fantasy", summary.BestSellingGenre.Name)
	assert.Equal(t, int64(5), summary.BestSellingGenre.Quantity)
	assert.Nil(t, summary.WorstSellingGenre)
}

func TestStatsService_Summarize_RanksGenresByQuantity(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewStatsService(repo, zerolog.Nop())

	genreG := uuid.New()
	genreH := uuid.New()

	// Three orders: 10.00, 20.00 and 30.00 -> average 20.00.
	repo.On("Totals", mock.Anything).Return(int64(3), decimal.RequireFromString("60.00"), nil)
	streamLines(repo, []model.LineGenre{
		{GenreID: genreG, GenreName: "G", Quantity: 2},
		{GenreID: genreG, GenreName: "G", Quantity: 3},
		{GenreID: genreH, GenreName: "H", Quantity: 1},
	})

	summary, err := svc.Summarize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalOrders)
	assert.True(t, summary.AverageOrderValue.Equal(decimal.RequireFromString("20.00")),
		"got %s", summary.AverageOrderValue)

	require.NotNil(t, summary.BestSellingGenre)
	assert.Equal(t, genreG, summary.BestSellingGenre.GenreID)
	assert.Equal(t, int64(5), summary.BestSellingGenre.Quantity)

	require.NotNil(t, summary.WorstSellingGenre)
	assert.Equal(t, genreH, summary.WorstSellingGenre.GenreID)
	assert.Equal(t, int64(1), summary.WorstSellingGenre.Quantity)
}

func TestStatsService_Summarize_TieBrokenByGenreID(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewStatsService(repo, zerolog.Nop())

	genreA := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	genreB := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	genreC := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	repo.On("Totals", mock.Anything).Return(int64(3), decimal.RequireFromString("90.00"), nil)
	streamLines(repo, []model.LineGenre{
		{GenreID: genreC, GenreName: "C", Quantity: 4},
		{GenreID: genreB, GenreName: "B", Quantity: 4},
		{GenreID: genreA, GenreName: "A", Quantity: 4},
	})

	summary, err := svc.Summarize(context.Background())

	require.NoError(t, err)
	// All tied on quantity, so the lowest id wins the top spot and the
	// highest id lands at the bottom.
	require.NotNil(t, summary.BestSellingGenre)
	assert.Equal(t, genreA, summary.BestSellingGenre.GenreID)
	require.NotNil(t, summary.WorstSellingGenre)
	assert.Equal(t, genreC, summary.WorstSellingGenre.GenreID)
}

func TestStatsService_Summarize_AverageRoundsToTwoDecimals(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewStatsService(repo, zerolog.Nop())

	repo.On("Totals", mock.Anything).Return(int64(3), decimal.RequireFromString("100.00"), nil)
	streamLines(repo, nil)

	summary, err := svc.Summarize(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.AverageOrderValue.Equal(decimal.RequireFromString("33.33")),
		"got %s", summary.AverageOrderValue)
}
