package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and payload.
func writeError(w http.ResponseWriter, status int, resp model.ErrorResponse, logger zerolog.Logger) {
	logger.Warn().
		Str("code", resp.Error).
		Str("message", resp.Message).
		Int("status", status).
		Msg("request failed")
	writeJSON(w, status, resp)
}

// writeDomainError maps a service error to its HTTP status and body. Failing
// book ids are always named so the client can correct and resubmit; internal
// storage details never leave the server.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		available, requested := stockErr.Available, stockErr.Requested
		writeError(w, http.StatusConflict, model.ErrorResponse{
			Error:     model.ErrCodeInsufficientStock,
			Message:   "Requested quantity exceeds available stock",
			BookIDs:   []uuid.UUID{stockErr.BookID},
			Available: &available,
			Requested: &requested,
		}, logger)
		return
	}

	var notFoundErr *model.BookNotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, model.ErrorResponse{
			Error:   model.ErrCodeBookNotFound,
			Message: "One or more books not found",
			BookIDs: notFoundErr.BookIDs,
		}, logger)
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusInternalServerError
		switch domainErr.Code {
		case model.ErrCodeInvalidRequest, model.ErrCodeDuplicateLineItem:
			status = http.StatusBadRequest
		case model.ErrCodeUserNotFound, model.ErrCodeOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodeStockConflict:
			status = http.StatusConflict
		case model.ErrCodeCommitFailed:
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, model.ErrorResponse{
			Error:   domainErr.Code,
			Message: domainErr.Message,
		}, logger)
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeError(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "Internal server error",
	}, logger)
}
