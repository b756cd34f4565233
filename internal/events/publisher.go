package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventTypeOrderPlaced = "order.placed"

// Publisher публикует события о заказах
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
	Close() error
}

// OrderPlaced полезная нагрузка события
type OrderPlaced struct {
	OrderID       int64                `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	UserID        int64                `json:"user_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Items         []OrderPlacedItem    `json:"items"`
	PlacedAt      time.Time            `json:"placed_at"`
}

type OrderPlacedItem struct {
	MenuItemID int64           `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher пишет события в топик, ключ сообщения - номер заказа
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	payload, err := json.Marshal(newOrderPlaced(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
			{Key: "order_id", Value: []byte(strconv.FormatInt(order.ID, 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher используется, когда брокеры не настроены
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, *models.Order) error { return nil }
func (NopPublisher) Close() error                                          { return nil }

func newOrderPlaced(order *models.Order) OrderPlaced {
	ev := OrderPlaced{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		PlacedAt:      order.CreatedAt,
		Items:         make([]OrderPlacedItem, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		ev.Items = append(ev.Items, OrderPlacedItem{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Price:      it.Price,
		})
	}
	return ev
}
