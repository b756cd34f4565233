package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/restaurant-orders/internal/ordernum"
	"github.com/linemk/restaurant-orders/internal/service"
	"github.com/linemk/restaurant-orders/internal/session"
	"github.com/linemk/restaurant-orders/internal/storage"
)

var validate = validator.New()

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON кодирует ответ с заданным статусом
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeServiceError переводит ошибку бизнес-логики в HTTP-статус
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrMenuItemNotFound):
		writeError(w, logger, http.StatusNotFound, "menu item not found")
	case errors.Is(err, storage.ErrOrderNotFound):
		writeError(w, logger, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrEmptyCart):
		writeError(w, logger, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, logger, http.StatusBadRequest, fmt.Sprintf("quantity must be between 1 and %d", service.MaxLineQuantity))
	case errors.Is(err, service.ErrItemsUnavailable):
		writeError(w, logger, http.StatusConflict, "some items are no longer available, please update your cart")
	case errors.Is(err, ordernum.ErrAllocationExhausted), errors.Is(err, storage.ErrOrderNumberTaken):
		writeError(w, logger, http.StatusConflict, "could not allocate order number, please retry")
	default:
		logger.Error("request failed", slog.Any("error", err))
		writeError(w, logger, http.StatusInternalServerError, "internal server error")
	}
}

// sessionFromRequest достаёт сессию, поднятую session.Middleware
func sessionFromRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		logger.Error("session not found in context")
		writeError(w, logger, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return sess, true
}
