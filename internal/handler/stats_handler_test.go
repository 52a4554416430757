package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStatsService is a mock implementation of StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Summarize(ctx context.Context) (*model.StatsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StatsSummary), args.Error(1)
}

func TestStatsHandler_Summarize(t *testing.T) {
	mockService := new(MockStatsService)
	h := NewStatsHandler(mockService, zerolog.Nop())

	genreID := uuid.New()
	mockService.On("Summarize", mock.Anything).Return(&model.StatsSummary{
		TotalOrders:       3,
		AverageOrderValue: decimal.RequireFromString("20.00"),
		BestSellingGenre:  &model.GenreSales{GenreID: genreID, Name: "Fantasy", Quantity: 5},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/statistics", nil)
	rec := httptest.NewRecorder()
	h.Summarize(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary model.StatsSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, int64(3), summary.TotalOrders)
	require.NotNil(t, summary.BestSellingGenre)
	assert.Equal(t, "Fantasy", summary.BestSellingGenre.Name)
	assert.Nil(t, summary.WorstSellingGenre)
	mockService.AssertExpectations(t)
}

func TestStatsHandler_Summarize_ServiceFailure(t *testing.T) {
	mockService := new(MockStatsService)
	h := NewStatsHandler(mockService, zerolog.Nop())

	mockService.On("Summarize", mock.Anything).Return(nil, errors.New("connection reset"))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/statistics", nil)
	rec := httptest.NewRecorder()
	h.Summarize(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeInternalError, resp.Error)
	assert.NotContains(t, resp.Message, "connection reset")
}
