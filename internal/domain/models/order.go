package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// IsActive - заказ принят, но ещё не передан в доставку
func (s OrderStatus) IsActive() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing:
		return true
	}
	return false
}

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodMpesa PaymentMethod = "mpesa"
)

// Order представляет заказ, оформленный из корзины
type Order struct {
	ID               int64           `json:"id"`
	OrderNumber      string          `json:"order_number"`
	UserID           int64           `json:"user_id"`
	Status           OrderStatus     `json:"status"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	DeliveryLocation string          `json:"delivery_location"`
	Phone            string          `json:"phone"`
	Notes            string          `json:"notes"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Items            []*OrderItem    `json:"items,omitempty"`
}

// OrderItem позиция заказа; цена фиксируется на момент оформления
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	MenuItemID   int64           `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name"` // заполняется через JOIN с таблицей menu_items
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

// Total стоимость позиции
func (i *OrderItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
