package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/restaurant-orders/internal/service"
)

// OrdersResponse история заказов
type OrdersResponse struct {
	Orders []*models.Order `json:"orders"`
}

// DashboardHandler обрабатывает запрос GET /api/dashboard
func DashboardHandler(log *slog.Logger, dashboardService service.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DashboardHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		dash, err := dashboardService.Dashboard(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, dash)
	}
}

// OrderHistoryHandler обрабатывает запрос GET /api/orders
func OrderHistoryHandler(log *slog.Logger, dashboardService service.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderHistoryHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := dashboardService.History(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, OrdersResponse{Orders: orders})
	}
}

// OrderDetailHandler обрабатывает запрос GET /api/orders/{id}
func OrderDetailHandler(log *slog.Logger, dashboardService service.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderDetailHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}
		orderID, ok := idParam(w, r, logger)
		if !ok {
			return
		}

		order, err := dashboardService.Order(r.Context(), userID, orderID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}
