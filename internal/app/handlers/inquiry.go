package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/linemk/restaurant-orders/internal/service"
)

// InquiryRequest тело POST /api/inquiries
type InquiryRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"required,max=20"`
	SubjectType string `json:"subject_type" validate:"required,oneof=order_inquiry general_question feedback complaint other"`
	OrderNumber string `json:"order_number" validate:"omitempty,max=32"`
	Message     string `json:"message" validate:"required,max=5000"`
}

// InquiryHandler обрабатывает запрос POST /api/inquiries, авторизация не нужна
func InquiryHandler(log *slog.Logger, inquiryService service.InquiryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.InquiryHandler"
		logger := log.With(slog.String("op", op))

		var req InquiryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		inquiry, err := inquiryService.Submit(r.Context(), service.InquiryDetails{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			SubjectType: models.InquirySubject(req.SubjectType),
			OrderNumber: req.OrderNumber,
			Message:     req.Message,
		})
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, inquiry)
	}
}
