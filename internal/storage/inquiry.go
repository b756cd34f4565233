package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/restaurant-orders/internal/domain/models"
)

// InquiryStorage описывает методы для работы с обращениями покупателей.
type InquiryStorage interface {
	// Create сохраняет обращение и заполняет ID и временные метки.
	Create(ctx context.Context, inquiry *models.Inquiry) error
}

type inquiryRepository struct {
	db *sql.DB
}

func NewInquiryRepository(db *sql.DB) InquiryStorage {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	query := `INSERT INTO contact_inquiries (name, email, phone, subject_type, order_number, message, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	orderNumber := sql.NullString{String: inquiry.OrderNumber, Valid: inquiry.OrderNumber != ""}
	err := r.db.QueryRowContext(ctx, query,
		inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.SubjectType,
		orderNumber, inquiry.Message, inquiry.Status,
	).Scan(&inquiry.ID, &inquiry.CreatedAt, &inquiry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create inquiry: %w", err)
	}
	return nil
}
