package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/storage"
)

// InquiryDetails данные с формы обратной связи
type InquiryDetails struct {
	Name        string
	Email       string
	Phone       string
	SubjectType models.InquirySubject
	OrderNumber string
	Message     string
}

// InquiryService принимает обращения покупателей
type InquiryService interface {
	Submit(ctx context.Context, details InquiryDetails) (*models.Inquiry, error)
}

type inquiryService struct {
	log         *slog.Logger
	inquiryRepo storage.InquiryStorage
}

func NewInquiryService(log *slog.Logger, inquiryRepo storage.InquiryStorage) InquiryService {
	return &inquiryService{log: log, inquiryRepo: inquiryRepo}
}

// Submit сохраняет обращение со статусом new
func (s *inquiryService) Submit(ctx context.Context, details InquiryDetails) (*models.Inquiry, error) {
	const op = "service.InquiryService.Submit"
	logger := s.log.With(slog.String("op", op), slog.String("subject", string(details.SubjectType)))

	inquiry := &models.Inquiry{
		Name:        details.Name,
		Email:       details.Email,
		Phone:       details.Phone,
		SubjectType: details.SubjectType,
		OrderNumber: details.OrderNumber,
		Message:     details.Message,
		Status:      models.InquiryStatusNew,
	}
	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		logger.Error("failed to save inquiry", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("inquiry received", slog.Int64("inquiryID", inquiry.ID))
	return inquiry, nil
}
