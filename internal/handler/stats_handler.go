package handler

import (
	"net/http"

	"bookshop/internal/service"

	"github.com/rs/zerolog"
)

// StatsHandler handles sales statistics HTTP requests.
type StatsHandler struct {
	service service.StatsService
	logger  zerolog.Logger
}

// NewStatsHandler creates a new statistics handler.
func NewStatsHandler(service service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger.With().Str("handler", "stats").Logger(),
	}
}

// Summarize handles GET /api/orders/statistics requests.
func (h *StatsHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
