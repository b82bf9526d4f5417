package checkin

import (
	"time"

	"ingrezzi/internal/events"
	"ingrezzi/internal/tickets"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetTicketByCode(code string) (*tickets.Ticket, error)
	GetTicketByID(id uuid.UUID) (*tickets.Ticket, error)
	GetEventByID(id uuid.UUID) (*events.Event, error)
	MarkRedeemed(ticketID uuid.UUID, at time.Time) (bool, error)
	AppendRecord(record *Record) error
	ListForEvent(eventID uuid.UUID, limit int) ([]RecordWithTicket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetTicketByCode(code string) (*tickets.Ticket, error) {
	var ticket tickets.Ticket
	err := r.db.Where("code = ?", code).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetTicketByID(id uuid.UUID) (*tickets.Ticket, error) {
	var ticket tickets.Ticket
	err := r.db.Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetEventByID(id uuid.UUID) (*events.Event, error) {
	var event events.Event
	err := r.db.Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// MarkRedeemed performs the single-winner transition. The WHERE clause on
// checked_in makes concurrent redemptions race at the database, not in
// application code; exactly one caller sees an affected row.
func (r *repository) MarkRedeemed(ticketID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.Model(&tickets.Ticket{}).
		Where("id = ? AND checked_in = ?", ticketID, false).
		Updates(map[string]interface{}{
			"checked_in":    true,
			"checked_in_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) AppendRecord(record *Record) error {
	return r.db.Create(record).Error
}

func (r *repository) ListForEvent(eventID uuid.UUID, limit int) ([]RecordWithTicket, error) {
	var records []RecordWithTicket
	err := r.db.Model(&Record{}).
		Select("checkins.*, tickets.code AS ticket_code, tickets.attendee_name AS attendee_name").
		Joins("JOIN tickets ON tickets.id = checkins.ticket_id").
		Where("checkins.event_id = ?", eventID).
		Order("checkins.checked_in_at DESC").
		Limit(limit).
		Scan(&records).Error
	return records, err
}
