package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/restaurant-orders/internal/cart"
	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/events"
	"github.com/linemk/restaurant-orders/internal/storage"
	"github.com/shopspring/decimal"
)

// сколько раз пробуем заново, если уникальный индекс отбил номер заказа
const placeOrderAttempts = 3

// NumberAllocator выдаёт номер для нового заказа
type NumberAllocator interface {
	Next(ctx context.Context) (string, error)
}

// CheckoutDetails данные доставки и оплаты
type CheckoutDetails struct {
	PaymentMethod    models.PaymentMethod
	DeliveryLocation string
	Phone            string
	Notes            string
}

// CheckoutService оформляет заказ из корзины сессии
type CheckoutService interface {
	Checkout(ctx context.Context, userID int64, sess cart.Session, details CheckoutDetails) (*models.Order, error)
}

type checkoutService struct {
	log       *slog.Logger
	db        *sql.DB
	menuRepo  storage.MenuStorage
	orderRepo storage.OrderStorage
	allocator NumberAllocator
	publisher events.Publisher
	cartKey   string
}

func NewCheckoutService(
	log *slog.Logger,
	db *sql.DB,
	menuRepo storage.MenuStorage,
	orderRepo storage.OrderStorage,
	allocator NumberAllocator,
	publisher events.Publisher,
	cartKey string,
) CheckoutService {
	return &checkoutService{
		log:       log,
		db:        db,
		menuRepo:  menuRepo,
		orderRepo: orderRepo,
		allocator: allocator,
		publisher: publisher,
		cartKey:   cartKey,
	}
}

// Checkout превращает корзину в заказ.
// Позиции с удалёнными из каталога блюдами в заказ не попадают, сумма считается по зафиксированным в корзине ценам.
// Если какое-то блюдо снято с продажи, заказ не оформляется и корзина остаётся как есть.
// Если номер заказа отбит уникальным индексом, попытка повторяется целиком с новым номером.
// Корзина очищается только после успешного коммита.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, sess cart.Session, details CheckoutDetails) (*models.Order, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout")

	c := cart.New(sess, s.cartKey, s.menuRepo)
	if c.LineCount() == 0 {
		logger.Info("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	var (
		items       []*models.OrderItem
		unavailable []string
	)
	total := decimal.Zero
	for item, err := range c.Items(ctx) {
		if err != nil {
			logger.Error("failed to resolve cart items", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to resolve cart items: %w", op, err)
		}
		if !item.MenuItem.IsAvailable {
			unavailable = append(unavailable, item.MenuItem.Name)
			continue
		}
		items = append(items, &models.OrderItem{
			MenuItemID:   item.ProductID,
			MenuItemName: item.MenuItem.Name,
			Quantity:     item.Quantity,
			Price:        item.UnitPrice,
		})
		total = total.Add(item.LineTotal)
	}
	if len(unavailable) > 0 {
		logger.Info("cart has unavailable items", slog.Any("items", unavailable))
		return nil, fmt.Errorf("%s: %s: %w", op, strings.Join(unavailable, ", "), ErrItemsUnavailable)
	}
	if len(items) == 0 {
		logger.Info("cart has no resolvable items")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; attempt <= placeOrderAttempts; attempt++ {
		order, err = s.placeOrder(ctx, logger, userID, details, items, total)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrOrderNumberTaken) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Warn("order number taken, retrying", slog.Int("attempt", attempt), slog.Any("error", err))
	}
	if err != nil {
		logger.Error("failed to place order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.Clear()

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		// заказ уже записан, событие не критично
		logger.Error("failed to publish order event", slog.String("orderNumber", order.OrderNumber), slog.Any("error", err))
	}

	logger.Info("order placed", slog.Int64("orderID", order.ID), slog.String("orderNumber", order.OrderNumber))
	return order, nil
}

// placeOrder выделяет номер и записывает заказ с позициями в одной транзакции
func (s *checkoutService) placeOrder(
	ctx context.Context,
	logger *slog.Logger,
	userID int64,
	details CheckoutDetails,
	items []*models.OrderItem,
	total decimal.Decimal,
) (*models.Order, error) {
	number, err := s.allocator.Next(ctx)
	if err != nil {
		logger.Error("failed to allocate order number", slog.Any("error", err))
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	order := &models.Order{
		OrderNumber:      number,
		UserID:           userID,
		Status:           models.OrderStatusPending,
		PaymentMethod:    details.PaymentMethod,
		DeliveryLocation: details.DeliveryLocation,
		Phone:            details.Phone,
		Notes:            details.Notes,
		TotalAmount:      total,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = make([]*models.OrderItem, 0, len(items))
	for _, it := range items {
		item := *it
		item.OrderID = order.ID
		if err := s.orderRepo.CreateOrderItem(ctx, tx, &item); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		order.Items = append(order.Items, &item)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, nil
}
