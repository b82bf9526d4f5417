package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TicketType string

const (
	TicketTypeFree TicketType = "free"
	TicketTypePaid TicketType = "paid"
)

// IsValid checks if the ticket type is valid
func (t TicketType) IsValid() bool {
	return t == TicketTypeFree || t == TicketTypePaid
}

type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrganizerID uuid.UUID `json:"organizer_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Date        time.Time `json:"date" gorm:"type:date;not null"`
	Time        string    `json:"time" gorm:"size:8"`
	Location    string    `json:"location" gorm:"not null;size:255"`
	Category    string    `json:"category" gorm:"size:100"`

	// Nil capacity means unlimited admission.
	Capacity *int `json:"capacity" gorm:"check:capacity IS NULL OR capacity > 0"`

	Price               decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null;default:0"`
	TicketType          TicketType      `json:"ticket_type" gorm:"type:varchar(10);default:'free'"`
	SystemFeePercentage decimal.Decimal `json:"system_fee_percentage" gorm:"type:numeric(5,2);default:5.0"`
	ImageURL            string          `json:"image_url" gorm:"size:500"`
	Status              Status          `json:"status" gorm:"type:varchar(20);default:'draft'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type EventResponse struct {
	ID                  string          `json:"id"`
	OrganizerID         string          `json:"organizer_id"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Date                string          `json:"date"`
	Time                string          `json:"time"`
	Location            string          `json:"location"`
	Category            string          `json:"category"`
	Capacity            *int            `json:"capacity"`
	Price               decimal.Decimal `json:"price"`
	TicketType          TicketType      `json:"ticket_type"`
	SystemFeePercentage decimal.Decimal `json:"system_fee_percentage"`
	ImageURL            string          `json:"image_url"`
	Status              Status          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type CreateEventRequest struct {
	Title       string          `json:"title" binding:"required,min=3,max=255"`
	Description string          `json:"description" binding:"max=2000"`
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string          `json:"time" binding:"omitempty,datetime=15:04"`
	Location    string          `json:"location" binding:"required,min=3,max=255"`
	Category    string          `json:"category" binding:"max=100"`
	Capacity    *int            `json:"capacity" binding:"omitempty,min=1,max=100000"`
	Price       decimal.Decimal `json:"price"`
	TicketType  string          `json:"ticket_type" binding:"required,oneof=free paid"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url"`
}

type UpdateEventRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=3,max=255"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Date        *string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time        *string          `json:"time" binding:"omitempty,datetime=15:04"`
	Location    *string          `json:"location" binding:"omitempty,min=3,max=255"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Capacity    *int             `json:"capacity" binding:"omitempty,min=1,max=100000"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status" binding:"omitempty,oneof=draft published cancelled completed"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,url"`
}

type EventListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Location string `form:"location"`
	Category string `form:"category"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// Helper method to convert Event to EventResponse
func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:                  e.ID.String(),
		OrganizerID:         e.OrganizerID.String(),
		Title:               e.Title,
		Description:         e.Description,
		Date:                e.Date.Format("2006-01-02"),
		Time:                e.Time,
		Location:            e.Location,
		Category:            e.Category,
		Capacity:            e.Capacity,
		Price:               e.Price,
		TicketType:          e.TicketType,
		SystemFeePercentage: e.SystemFeePercentage,
		ImageURL:            e.ImageURL,
		Status:              e.Status,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
