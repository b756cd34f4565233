package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/service"
	"github.com/linemk/restaurant-orders/internal/storage"
)

// MenuQuery параметры GET /api/menu?category=<slug>&tag=<tag>
type MenuQuery struct {
	Category string `validate:"omitempty,max=120"`
	Tag      string `validate:"omitempty,oneof=none popular new"`
}

// MenuResponse меню, сгруппированное по категориям
type MenuResponse struct {
	Sections []service.MenuSection `json:"sections"`
}

// FeaturedResponse подборка для главной страницы
type FeaturedResponse struct {
	Items []*models.MenuItem `json:"items"`
}

// CategoriesResponse список категорий для фильтра
type CategoriesResponse struct {
	Categories []*models.MenuCategory `json:"categories"`
}

// MenuHandler обрабатывает запрос GET /api/menu
func MenuHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MenuHandler"
		logger := log.With(slog.String("op", op))

		query := MenuQuery{
			Category: r.URL.Query().Get("category"),
			Tag:      r.URL.Query().Get("tag"),
		}
		if err := validate.Struct(query); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		sections, err := menuService.Menu(r.Context(), storage.MenuFilter{
			CategorySlug: query.Category,
			Tag:          models.MenuTag(query.Tag),
		})
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, MenuResponse{Sections: sections})
	}
}

// FeaturedHandler обрабатывает запрос GET /api/menu/featured
func FeaturedHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.FeaturedHandler"
		logger := log.With(slog.String("op", op))

		items, err := menuService.Featured(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, FeaturedResponse{Items: items})
	}
}

// CategoriesHandler обрабатывает запрос GET /api/menu/categories
func CategoriesHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := menuService.Categories(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, CategoriesResponse{Categories: categories})
	}
}
