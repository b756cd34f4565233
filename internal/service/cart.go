package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/restaurant-orders/internal/cart"
	"github.com/linemk/restaurant-orders/internal/storage"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity наибольшее количество одного блюда в корзине
const MaxLineQuantity = 99

// CartService операции над корзиной текущей сессии
type CartService interface {
	View(ctx context.Context, sess cart.Session) (*CartView, error)
	Add(ctx context.Context, sess cart.Session, menuItemID int64, quantity int) (*CartSummary, error)
	Update(ctx context.Context, sess cart.Session, menuItemID int64, quantity int) (*CartSummary, error)
	Remove(ctx context.Context, sess cart.Session, menuItemID int64) (*CartSummary, error)
	Clear(ctx context.Context, sess cart.Session) (*CartSummary, error)
}

// CartSummary краткое состояние корзины после изменения
type CartSummary struct {
	Count     int             `json:"cart_count"`
	LineCount int             `json:"line_count"`
	Total     decimal.Decimal `json:"cart_total"`
}

// CartView содержимое корзины с карточками блюд
type CartView struct {
	Items []CartViewItem `json:"items"`
	CartSummary
}

type CartViewItem struct {
	MenuItemID  int64           `json:"menu_item_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	IsAvailable bool            `json:"is_available"`
}

type cartService struct {
	log      *slog.Logger
	menuRepo storage.MenuStorage
	cartKey  string
}

func NewCartService(log *slog.Logger, menuRepo storage.MenuStorage, cartKey string) CartService {
	return &cartService{
		log:      log,
		menuRepo: menuRepo,
		cartKey:  cartKey,
	}
}

// View возвращает содержимое корзины.
// Позиции, чьих блюд больше нет в каталоге, заодно вычищаются из сессии, чтобы итог совпадал с тем, что видит клиент.
func (s *cartService) View(ctx context.Context, sess cart.Session) (*CartView, error) {
	const op = "service.CartService.View"
	logger := s.log.With(slog.String("op", op))

	c := cart.New(sess, s.cartKey, s.menuRepo)

	view := &CartView{Items: []CartViewItem{}}
	resolved := make(map[int64]struct{}, c.LineCount())
	for item, err := range c.Items(ctx) {
		if err != nil {
			logger.Error("failed to resolve cart items", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to resolve cart items: %w", op, err)
		}
		resolved[item.ProductID] = struct{}{}
		view.Items = append(view.Items, CartViewItem{
			MenuItemID:  item.ProductID,
			Name:        item.MenuItem.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			IsAvailable: item.MenuItem.IsAvailable,
		})
	}

	for _, line := range c.Lines() {
		if _, ok := resolved[line.ProductID]; !ok {
			logger.Info("dropping cart line for deleted menu item", slog.Int64("menuItemID", line.ProductID))
			c.Remove(line.ProductID)
		}
	}

	view.CartSummary = summarize(c)
	return view, nil
}

// Add кладёт доступное блюдо в корзину, цена фиксируется по каталогу на момент первого добавления
func (s *cartService) Add(ctx context.Context, sess cart.Session, menuItemID int64, quantity int) (*CartSummary, error) {
	const op = "service.CartService.Add"
	logger := s.log.With(slog.String("op", op), slog.Int64("menuItemID", menuItemID), slog.Int("quantity", quantity))

	if quantity <= 0 || quantity > MaxLineQuantity {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	item, err := s.menuRepo.GetAvailableByID(ctx, menuItemID)
	if err != nil {
		logger.Warn("menu item unavailable", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get menu item: %w", op, err)
	}

	c := cart.New(sess, s.cartKey, s.menuRepo)
	if line, ok := c.Line(item.ID); ok && line.Quantity+quantity > MaxLineQuantity {
		logger.Warn("line quantity limit exceeded", slog.Int("inCart", line.Quantity))
		return nil, fmt.Errorf("%s: %d in cart: %w", op, line.Quantity, ErrInvalidQuantity)
	}
	c.Add(item.ID, item.Price, quantity, false)

	logger.Info("item added to cart")
	summary := summarize(c)
	return &summary, nil
}

// Update выставляет количество; quantity <= 0 удаляет позицию
func (s *cartService) Update(ctx context.Context, sess cart.Session, menuItemID int64, quantity int) (*CartSummary, error) {
	const op = "service.CartService.Update"

	if quantity > MaxLineQuantity {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	c := cart.New(sess, s.cartKey, s.menuRepo)
	c.UpdateQuantity(menuItemID, quantity)

	summary := summarize(c)
	return &summary, nil
}

func (s *cartService) Remove(ctx context.Context, sess cart.Session, menuItemID int64) (*CartSummary, error) {
	c := cart.New(sess, s.cartKey, s.menuRepo)
	c.Remove(menuItemID)

	summary := summarize(c)
	return &summary, nil
}

func (s *cartService) Clear(ctx context.Context, sess cart.Session) (*CartSummary, error) {
	c := cart.New(sess, s.cartKey, s.menuRepo)
	c.Clear()

	summary := summarize(c)
	return &summary, nil
}

func summarize(c *cart.Cart) CartSummary {
	return CartSummary{
		Count:     c.TotalCount(),
		LineCount: c.LineCount(),
		Total:     c.TotalPrice(),
	}
}
