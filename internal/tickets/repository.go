package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	CreateWithCapacityCheck(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByCode(ctx context.Context, code string) (*Ticket, error)
	GetByEvent(ctx context.Context, eventID uuid.UUID, page, limit int) ([]Ticket, int64, error)
	GetByAttendeeEmail(ctx context.Context, email string) ([]Ticket, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	GetEventStats(ctx context.Context, eventID uuid.UUID) (*TicketStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithCapacityCheck inserts the ticket atomically against the event's
// capacity. The event row is locked for the duration of the transaction so
// concurrent purchases serialize; two buyers racing for the last ticket can
// never both pass the count.
func (r *repository) CreateWithCapacityCheck(ctx context.Context, ticket *Ticket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event struct {
			ID       uuid.UUID `gorm:"column:id"`
			Capacity *int      `gorm:"column:capacity"`
		}

		err := tx.Table("events").
			Select("id, capacity").
			Where("id = ?", ticket.EventID).
			Set("gorm:query_option", "FOR UPDATE").
			First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("failed to lock event: %w", err)
		}

		if event.Capacity != nil {
			var issued int64
			if err := tx.Model(&Ticket{}).Where("event_id = ?", ticket.EventID).Count(&issued).Error; err != nil {
				return fmt.Errorf("failed to count issued tickets: %w", err)
			}
			if issued >= int64(*event.Capacity) {
				return ErrEventSoldOut
			}
		}

		return tx.Create(ticket).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByEvent(ctx context.Context, eventID uuid.UUID, page, limit int) ([]Ticket, int64, error) {
	var tickets []Ticket
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Ticket{}).Where("event_id = ?", eventID)

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 20
	}

	err := db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tickets).Error

	return tickets, totalCount, err
}

func (r *repository) GetByAttendeeEmail(ctx context.Context, email string) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).Where("attendee_email = ?", email).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Ticket{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *repository) GetEventStats(ctx context.Context, eventID uuid.UUID) (*TicketStats, error) {
	var stats TicketStats

	base := r.db.WithContext(ctx).Model(&Ticket{}).Where("event_id = ?", eventID)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalIssued).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).Where("checked_in = ?", true).Count(&stats.CheckedIn).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).Where("payment_status = ?", PaymentStatusPending).Count(&stats.PendingPayment).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).Where("payment_status = ?", PaymentStatusCompleted).Count(&stats.CompletedPayment).Error; err != nil {
		return nil, err
	}

	var revenue struct {
		Total decimal.Decimal
	}
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(price), 0) as total").
		Where("payment_status = ?", PaymentStatusCompleted).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Total

	return &stats, nil
}
