package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/restaurant-orders/internal/domain/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNumberTaken - номер уже занят, сработал уникальный индекс orders.order_number
	ErrOrderNumberTaken = errors.New("order number already taken")
)

const uniqueViolation = "23505"

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// LastNumber возвращает наибольший номер заказа с указанным префиксом.
	// Порядок: сначала по длине номера, затем лексикографически.
	LastNumber(ctx context.Context, prefix string) (string, bool, error)
	// Exists проверяет, занят ли номер заказа.
	Exists(ctx context.Context, number string) (bool, error)
	// CreateOrder вставляет заказ в рамках транзакции и заполняет ID и временные метки.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// CreateOrderItem вставляет позицию заказа в рамках транзакции.
	CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	// GetOrdersByUserID возвращает заказы пользователя, новые первыми, без позиций.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// GetOrderByID возвращает заказ пользователя вместе с позициями.
	GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) LastNumber(ctx context.Context, prefix string) (string, bool, error) {
	var number string
	query := "SELECT order_number FROM orders WHERE order_number LIKE $1 ORDER BY LENGTH(order_number) DESC, order_number DESC LIMIT 1"
	err := r.db.QueryRowContext(ctx, query, prefix+"%").Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get last order number: %w", err)
	}
	return number, true, nil
}

func (r *orderRepository) Exists(ctx context.Context, number string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)"
	if err := r.db.QueryRowContext(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `INSERT INTO orders (order_number, user_id, status, payment_method, delivery_location, phone, notes, total_amount, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := tx.QueryRowContext(ctx, query,
		order.OrderNumber, order.UserID, order.Status, order.PaymentMethod,
		order.DeliveryLocation, order.Phone, order.Notes, order.TotalAmount,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("failed to create order %s: %w", order.OrderNumber, ErrOrderNumberTaken)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := tx.QueryRowContext(ctx, query, item.OrderID, item.MenuItemID, item.Quantity, item.Price).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, user_id, status, payment_method, delivery_location, phone, notes,
		total_amount, created_at, updated_at`

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1 AND user_id = $2`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemsQuery := `
		SELECT oi.id, oi.order_id, oi.menu_item_id, mi.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN menu_items mi ON oi.menu_item_id = mi.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.MenuItemName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.OrderNumber, &order.UserID, &order.Status, &order.PaymentMethod,
		&order.DeliveryLocation, &order.Phone, &order.Notes, &order.TotalAmount, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}
