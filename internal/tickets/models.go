package tickets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Ticket is a single admission. The code doubles as the QR payload and the
// manually typed fallback. checked_in only ever moves false -> true.
type Ticket struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID       uuid.UUID       `json:"event_id" gorm:"type:uuid;not null;index"`
	Code          string          `json:"code" gorm:"uniqueIndex;not null;size:12"`
	AttendeeName  string          `json:"attendee_name" gorm:"not null;size:255"`
	AttendeeEmail string          `json:"attendee_email" gorm:"not null;index;size:255"`
	AttendeePhone string          `json:"attendee_phone" gorm:"size:30"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null;default:0"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);default:'pending'"`
	PaymentID     string          `json:"payment_id" gorm:"size:255"`
	CheckedIn     bool            `json:"checked_in" gorm:"not null;default:false"`
	CheckedInAt   *time.Time      `json:"checked_in_at"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

type TicketResponse struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	Code          string          `json:"code"`
	AttendeeName  string          `json:"attendee_name"`
	AttendeeEmail string          `json:"attendee_email"`
	AttendeePhone string          `json:"attendee_phone"`
	Price         decimal.Decimal `json:"price"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CheckedIn     bool            `json:"checked_in"`
	CheckedInAt   *time.Time      `json:"checked_in_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

type IssueTicketRequest struct {
	EventID       string `json:"event_id" binding:"required,uuid"`
	AttendeeName  string `json:"attendee_name" binding:"required,min=2,max=255"`
	AttendeeEmail string `json:"attendee_email" binding:"required,email"`
	AttendeePhone string `json:"attendee_phone" binding:"omitempty,max=30"`
}

type TicketListQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type PaginatedTickets struct {
	Tickets    []TicketResponse `json:"tickets"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type TicketStats struct {
	TotalIssued      int64           `json:"total_issued"`
	CheckedIn        int64           `json:"checked_in"`
	PendingPayment   int64           `json:"pending_payment"`
	CompletedPayment int64           `json:"completed_payment"`
	Revenue          decimal.Decimal `json:"revenue"`
}

// Helper method to convert Ticket to TicketResponse
func (t *Ticket) ToResponse() TicketResponse {
	return TicketResponse{
		ID:            t.ID.String(),
		EventID:       t.EventID.String(),
		Code:          t.Code,
		AttendeeName:  t.AttendeeName,
		AttendeeEmail: t.AttendeeEmail,
		AttendeePhone: t.AttendeePhone,
		Price:         t.Price,
		PaymentStatus: t.PaymentStatus,
		CheckedIn:     t.CheckedIn,
		CheckedInAt:   t.CheckedInAt,
		CreatedAt:     t.CreatedAt,
	}
}

// TableName specifies the table name for GORM
func (Ticket) TableName() string {
	return "tickets"
}
