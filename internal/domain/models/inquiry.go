package models

import "time"

// InquirySubject тема обращения с формы обратной связи
type InquirySubject string

const (
	InquirySubjectOrder     InquirySubject = "order_inquiry"
	InquirySubjectGeneral   InquirySubject = "general_question"
	InquirySubjectFeedback  InquirySubject = "feedback"
	InquirySubjectComplaint InquirySubject = "complaint"
	InquirySubjectOther     InquirySubject = "other"
)

// InquiryStatus статус разбора обращения
type InquiryStatus string

const (
	InquiryStatusNew        InquiryStatus = "new"
	InquiryStatusInProgress InquiryStatus = "in_progress"
	InquiryStatusResolved   InquiryStatus = "resolved"
)

// Inquiry обращение покупателя
type Inquiry struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	SubjectType InquirySubject `json:"subject_type"`
	OrderNumber string         `json:"order_number,omitempty"` // пусто, если обращение не про конкретный заказ
	Message     string         `json:"message"`
	Status      InquiryStatus  `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
