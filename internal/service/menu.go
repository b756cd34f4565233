package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/storage"
)

// сколько блюд показывать в подборке на главной
const featuredLimit = 8

// MenuService отдаёт меню для витрины
type MenuService interface {
	Menu(ctx context.Context, filter storage.MenuFilter) ([]MenuSection, error)
	Featured(ctx context.Context) ([]*models.MenuItem, error)
	Categories(ctx context.Context) ([]*models.MenuCategory, error)
}

// MenuSection блюда одной категории
type MenuSection struct {
	Category string             `json:"category"`
	Items    []*models.MenuItem `json:"items"`
}

type menuService struct {
	log      *slog.Logger
	menuRepo storage.MenuStorage
}

func NewMenuService(log *slog.Logger, menuRepo storage.MenuStorage) MenuService {
	return &menuService{log: log, menuRepo: menuRepo}
}

// Menu группирует доступные блюда по категориям, порядок категорий сохраняется как в выборке
func (s *menuService) Menu(ctx context.Context, filter storage.MenuFilter) ([]MenuSection, error) {
	const op = "service.MenuService.Menu"

	items, err := s.menuRepo.ListAvailable(ctx, filter)
	if err != nil {
		s.log.Error("failed to list menu", slog.String("op", op),
			slog.String("category", filter.CategorySlug), slog.String("tag", string(filter.Tag)), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list menu: %w", op, err)
	}

	sections := []MenuSection{}
	index := make(map[int64]int)
	for _, item := range items {
		i, ok := index[item.CategoryID]
		if !ok {
			sections = append(sections, MenuSection{Category: item.CategoryName})
			i = len(sections) - 1
			index[item.CategoryID] = i
		}
		sections[i].Items = append(sections[i].Items, item)
	}
	return sections, nil
}

// Featured подборка блюд для главной страницы
func (s *menuService) Featured(ctx context.Context) ([]*models.MenuItem, error) {
	const op = "service.MenuService.Featured"

	items, err := s.menuRepo.ListFeatured(ctx, featuredLimit)
	if err != nil {
		s.log.Error("failed to list featured items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list featured items: %w", op, err)
	}
	if items == nil {
		items = []*models.MenuItem{}
	}
	return items, nil
}

func (s *menuService) Categories(ctx context.Context) ([]*models.MenuCategory, error) {
	const op = "service.MenuService.Categories"

	categories, err := s.menuRepo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list categories: %w", op, err)
	}
	if categories == nil {
		categories = []*models.MenuCategory{}
	}
	return categories, nil
}
