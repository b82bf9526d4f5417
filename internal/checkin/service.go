package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ingrezzi/internal/authorizations"
	"ingrezzi/internal/events"
	"ingrezzi/internal/notifications"
	"ingrezzi/internal/shared/config"
	"ingrezzi/internal/shared/constants"
	"ingrezzi/internal/tickets"
	"ingrezzi/pkg/logger"
	"ingrezzi/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotAuthorized = errors.New("not authorized for this event")
)

// Service is the redemption engine. Redeem is the only mutation path for a
// ticket's checked_in flag: one-way, idempotent, safe under concurrent
// submissions. The acting user is always passed in explicitly.
type Service interface {
	Redeem(ctx context.Context, code string, actingUserID uuid.UUID) (*Result, error)
	ScanAllowed(ctx context.Context, code string) bool
	RecentCheckins(ctx context.Context, actingUserID, eventID uuid.UUID, limit int) ([]RecordResponse, error)
}

type service struct {
	repo     Repository
	resolver authorizations.Service
	redis    *redis.Client
	cooldown time.Duration
	notifier notifications.Service
	log      *logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, resolver authorizations.Service, redisClient *redis.Client, cfg *config.Config, notifier notifications.Service) Service {
	return &service{
		repo:     repo,
		resolver: resolver,
		redis:    redisClient,
		cooldown: cfg.Checkin.ScanCooldown,
		notifier: notifier,
		log:      logger.GetDefault(),
		now:      time.Now,
	}
}

// Redeem attempts to redeem the ticket identified by code on behalf of
// actingUserID. All five outcomes are expected results; an error return
// means infrastructure failure only, and the caller may retry freely.
func (s *service) Redeem(ctx context.Context, code string, actingUserID uuid.UUID) (*Result, error) {
	start := s.now()

	code = strings.TrimSpace(code)
	if code == "" {
		return s.finish(&Result{Outcome: OutcomeInvalidCode}, start), nil
	}

	ticket, err := s.repo.GetTicketByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.finish(&Result{Outcome: OutcomeTicketNotFound}, start), nil
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	event, err := s.repo.GetEventByID(ticket.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event for ticket: %w", err)
	}

	authorized, err := s.resolver.IsAuthorized(ctx, actingUserID, event.ID, event.OrganizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authorization: %w", err)
	}
	if !authorized {
		result := &Result{
			Outcome: OutcomeUnauthorized,
			Event:   eventSummary(event),
		}
		return s.finish(result, start), nil
	}

	now := s.now()
	won, err := s.repo.MarkRedeemed(ticket.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem ticket: %w", err)
	}

	if !won {
		// Someone redeemed first (or earlier). Re-read for the stored
		// timestamp so the caller sees when it actually happened.
		stored, err := s.repo.GetTicketByID(ticket.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read redeemed ticket: %w", err)
		}
		result := &Result{
			Outcome:     OutcomeAlreadyRedeemed,
			Ticket:      ticketSummary(stored),
			Event:       eventSummary(event),
			CheckedInAt: stored.CheckedInAt,
		}
		return s.finish(result, start), nil
	}

	// The redemption is committed. The audit record follows; if it fails,
	// the redemption stands and the divergence is logged for reconciliation.
	record := &Record{
		TicketID:    ticket.ID,
		EventID:     event.ID,
		CheckedInBy: actingUserID,
		CheckedInAt: now,
	}
	if err := s.repo.AppendRecord(record); err != nil {
		s.log.LogAuditDivergence(ctx, ticket.ID.String(), actingUserID.String(), err)
	}

	s.log.LogTicketRedeemed(ctx, ticket.ID.String(), event.ID.String(), actingUserID.String())

	if err := s.notifier.PublishTicketCheckedIn(ctx, ticket.ID, event.ID, ticket.Code,
		ticket.AttendeeEmail, ticket.AttendeeName, event.Title); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish check-in notification", err, map[string]interface{}{
			"ticket_id": ticket.ID.String(),
		})
	}

	result := &Result{
		Outcome:     OutcomeRedeemed,
		Ticket:      ticketSummary(ticket),
		Event:       eventSummary(event),
		CheckedInAt: &now,
	}
	return s.finish(result, start), nil
}

// ScanAllowed debounces rapid duplicate submissions of the same physical
// scan. It is not a correctness mechanism; the conditional update is. A
// redis failure fails open so check-in keeps working without the cache.
func (s *service) ScanAllowed(ctx context.Context, code string) bool {
	if s.redis == nil || s.cooldown <= 0 {
		return true
	}

	key := constants.BuildScanCooldownKey(strings.TrimSpace(code))
	ok, err := s.redis.SetNX(ctx, key, 1, s.cooldown).Result()
	if err != nil {
		return true
	}
	if !ok {
		metrics.ScanCooldownHit()
	}
	return ok
}

func (s *service) RecentCheckins(ctx context.Context, actingUserID, eventID uuid.UUID, limit int) ([]RecordResponse, error) {
	event, err := s.repo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	authorized, err := s.resolver.IsAuthorized(ctx, actingUserID, event.ID, event.OrganizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authorization: %w", err)
	}
	if !authorized {
		return nil, ErrNotAuthorized
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := s.repo.ListForEvent(eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	responses := make([]RecordResponse, len(records))
	for i := range records {
		responses[i] = records[i].ToResponse()
	}
	return responses, nil
}

func (s *service) finish(result *Result, start time.Time) *Result {
	metrics.ObserveRedemption(string(result.Outcome), start)
	return result
}

func ticketSummary(t *tickets.Ticket) *TicketSummary {
	return &TicketSummary{
		ID:            t.ID.String(),
		Code:          t.Code,
		AttendeeName:  t.AttendeeName,
		AttendeeEmail: t.AttendeeEmail,
		PaymentStatus: string(t.PaymentStatus),
	}
}

func eventSummary(e *events.Event) *EventSummary {
	return &EventSummary{
		ID:       e.ID.String(),
		Title:    e.Title,
		Date:     e.Date.Format("2006-01-02"),
		Time:     e.Time,
		Location: e.Location,
	}
}
