package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/storage"
	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

// DashboardService кабинет покупателя: сводка, история и детали заказа
type DashboardService interface {
	Dashboard(ctx context.Context, userID int64) (*Dashboard, error)
	History(ctx context.Context, userID int64) ([]*models.Order, error)
	Order(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

// Dashboard сводка по заказам покупателя
type Dashboard struct {
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	RecentOrders  []*models.Order `json:"recent_orders"`
}

type dashboardService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewDashboardService(log *slog.Logger, orderRepo storage.OrderStorage) DashboardService {
	return &dashboardService{log: log, orderRepo: orderRepo}
}

func (s *dashboardService) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	const op = "service.DashboardService.Dashboard"
	s.log.Info("building dashboard", slog.String("op", op), slog.Int64("userID", userID))

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}

	// заказы приходят уже отсортированными от новых к старым
	resp := &Dashboard{
		TotalOrders:  len(orders),
		TotalSpent:   decimal.Zero,
		RecentOrders: orders[:min(len(orders), recentOrdersLimit)],
	}
	for _, order := range orders {
		if order.Status.IsActive() {
			resp.PendingOrders++
		}
		resp.TotalSpent = resp.TotalSpent.Add(order.TotalAmount)
	}
	if resp.RecentOrders == nil {
		resp.RecentOrders = []*models.Order{}
	}
	return resp, nil
}

func (s *dashboardService) History(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.DashboardService.History"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (s *dashboardService) Order(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	const op = "service.DashboardService.Order"

	order, err := s.orderRepo.GetOrderByID(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}
