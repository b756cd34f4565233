package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/restaurant-orders/internal/service"
)

// CheckoutRequest тело POST /api/checkout
type CheckoutRequest struct {
	PaymentMethod    string `json:"payment_method" validate:"required,oneof=cash mpesa"`
	DeliveryLocation string `json:"delivery_location" validate:"required,max=255"`
	Phone            string `json:"phone" validate:"required,max=20"`
	Notes            string `json:"notes" validate:"max=1000"`
}

// CheckoutHandler обрабатывает запрос POST /api/checkout
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		// userID кладёт JWT middleware
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		sess, ok := sessionFromRequest(w, r, logger)
		if !ok {
			return
		}

		order, err := checkoutService.Checkout(r.Context(), userID, sess, service.CheckoutDetails{
			PaymentMethod:    models.PaymentMethod(req.PaymentMethod),
			DeliveryLocation: req.DeliveryLocation,
			Phone:            req.Phone,
			Notes:            req.Notes,
		})
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, order)
	}
}
