package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/restaurant-orders/internal/service"
)

// AddToCartRequest тело POST /api/cart/items
type AddToCartRequest struct {
	MenuItemID int64 `json:"menu_item_id" validate:"required,gt=0"`
	Quantity   int   `json:"quantity" validate:"required,gt=0,max=99"`
}

// UpdateCartItemRequest тело PUT /api/cart/items/{id}; 0 убирает позицию
// Верхняя граница количества совпадает с service.MaxLineQuantity.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,max=99"`
}

// CartViewHandler обрабатывает запрос GET /api/cart
func CartViewHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartViewHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFromRequest(w, r, logger)
		if !ok {
			return
		}

		view, err := cartService.View(r.Context(), sess)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}

// CartAddHandler обрабатывает запрос POST /api/cart/items
func CartAddHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartAddHandler"
		logger := log.With(slog.String("op", op))

		var req AddToCartRequest
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

		summary, err := cartService.Add(r.Context(), sess, req.MenuItemID, req.Quantity)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, summary)
	}
}

// CartUpdateHandler обрабатывает запрос PUT /api/cart/items/{id}
func CartUpdateHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartUpdateHandler"
		logger := log.With(slog.String("op", op))

		menuItemID, ok := idParam(w, r, logger)
		if !ok {
			return
		}

		var req UpdateCartItemRequest
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

		summary, err := cartService.Update(r.Context(), sess, menuItemID, *req.Quantity)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, summary)
	}
}

// CartRemoveHandler обрабатывает запрос DELETE /api/cart/items/{id}
func CartRemoveHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartRemoveHandler"
		logger := log.With(slog.String("op", op))

		menuItemID, ok := idParam(w, r, logger)
		if !ok {
			return
		}
		sess, ok := sessionFromRequest(w, r, logger)
		if !ok {
			return
		}

		summary, err := cartService.Remove(r.Context(), sess, menuItemID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, summary)
	}
}

// CartClearHandler обрабатывает запрос DELETE /api/cart
func CartClearHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartClearHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFromRequest(w, r, logger)
		if !ok {
			return
		}

		summary, err := cartService.Clear(r.Context(), sess)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, summary)
	}
}

// idParam разбирает {id} из пути
func idParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.Error("invalid id parameter", slog.String("id", raw))
		writeError(w, logger, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
