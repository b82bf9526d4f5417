package checkin

import (
	"time"

	"github.com/google/uuid"
)

// Record is the append-only audit trail: exactly one row per successful
// redemption, created after the ticket transition commits.
type Record struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketID    uuid.UUID `json:"ticket_id" gorm:"type:uuid;not null;index"`
	EventID     uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	CheckedInBy uuid.UUID `json:"checked_in_by" gorm:"type:uuid;not null"`
	CheckedInAt time.Time `json:"checked_in_at" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Record) TableName() string {
	return "checkins"
}

// Outcome classifies every way a redemption attempt can end. These are
// expected results, not errors; infrastructure failures surface separately.
type Outcome string

const (
	OutcomeRedeemed        Outcome = "redeemed"
	OutcomeAlreadyRedeemed Outcome = "already_redeemed"
	OutcomeTicketNotFound  Outcome = "ticket_not_found"
	OutcomeUnauthorized    Outcome = "unauthorized"
	OutcomeInvalidCode     Outcome = "invalid_code"
)

type TicketSummary struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
	PaymentStatus string `json:"payment_status"`
}

type EventSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// Result is what a redemption attempt produces. CheckedInAt carries the
// commit timestamp for Redeemed and the original stored timestamp for
// AlreadyRedeemed.
type Result struct {
	Outcome     Outcome        `json:"outcome"`
	Ticket      *TicketSummary `json:"ticket,omitempty"`
	Event       *EventSummary  `json:"event,omitempty"`
	CheckedInAt *time.Time     `json:"checked_in_at,omitempty"`
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

type RecordWithTicket struct {
	Record
	TicketCode   string `json:"ticket_code"`
	AttendeeName string `json:"attendee_name"`
}

type RecordResponse struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"`
	TicketCode   string    `json:"ticket_code"`
	AttendeeName string    `json:"attendee_name"`
	CheckedInBy  string    `json:"checked_in_by"`
	CheckedInAt  time.Time `json:"checked_in_at"`
}

func (r *RecordWithTicket) ToResponse() RecordResponse {
	return RecordResponse{
		ID:           r.ID.String(),
		TicketID:     r.TicketID.String(),
		TicketCode:   r.TicketCode,
		AttendeeName: r.AttendeeName,
		CheckedInBy:  r.CheckedInBy.String(),
		CheckedInAt:  r.CheckedInAt,
	}
}
