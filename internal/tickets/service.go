package tickets

import (
	"context"
	"errors"
	"fmt"

	"ingrezzi/internal/events"
	"ingrezzi/internal/notifications"
	"ingrezzi/internal/shared/constants"
	"ingrezzi/pkg/cache"
	"ingrezzi/pkg/logger"
	"ingrezzi/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrEventNotOnSale   = errors.New("event is not selling tickets")
	ErrEventSoldOut     = errors.New("event is sold out")
	ErrNotEventOwner    = errors.New("only the event organizer can view this")
	ErrCodeGenExhausted = errors.New("could not generate a unique ticket code")
)

// codeGenAttempts bounds the retry loop on a code collision. With 36^8
// codes a second attempt is already rare.
const codeGenAttempts = 5

type Service interface {
	SetCacheService(cacheService cache.Service)
	IssueTicket(ctx context.Context, req IssueTicketRequest) (*TicketResponse, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*TicketResponse, error)
	GetEventTickets(ctx context.Context, actingUserID, eventID uuid.UUID, query TicketListQuery) (*PaginatedTickets, error)
	GetEventTicketStats(ctx context.Context, actingUserID, eventID uuid.UUID) (*TicketStats, error)
	GetMyTickets(ctx context.Context, attendeeEmail string) ([]TicketResponse, error)
}

type service struct {
	repo         Repository
	eventRepo    events.Repository
	notifier     notifications.Service
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, eventRepo events.Repository, notifier notifications.Service) Service {
	return &service{
		repo:      repo,
		eventRepo: eventRepo,
		notifier:  notifier,
		log:       logger.GetDefault(),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) invalidateTicketCache(ctx context.Context, eventID uuid.UUID) {
	if s.cacheService == nil {
		return
	}

	pattern := constants.CACHE_PREFIX + ":tickets:*" + eventID.String() + "*"
	if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
		s.log.ErrorWithContext(ctx, "failed to invalidate ticket cache", err, map[string]interface{}{
			"event_id": eventID.String(),
		})
	}
}

func (s *service) IssueTicket(ctx context.Context, req IssueTicketRequest) (*TicketResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, errors.New("invalid event ID")
	}

	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if !event.Status.CanSellTickets() {
		return nil, ErrEventNotOnSale
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	// Free events are settled immediately; paid events record a pending
	// payment and the status is reconciled out of band.
	paymentStatus := PaymentStatusPending
	if event.TicketType == events.TicketTypeFree {
		paymentStatus = PaymentStatusCompleted
	}

	ticket := &Ticket{
		EventID:       eventID,
		Code:          code,
		AttendeeName:  req.AttendeeName,
		AttendeeEmail: req.AttendeeEmail,
		AttendeePhone: req.AttendeePhone,
		Price:         event.Price,
		PaymentStatus: paymentStatus,
	}

	// Capacity is enforced inside the insert transaction; a pre-read count
	// would let two purchases race past the last seat.
	if err := s.repo.CreateWithCapacityCheck(ctx, ticket); err != nil {
		if errors.Is(err, ErrEventSoldOut) {
			return nil, ErrEventSoldOut
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.log.LogTicketIssued(ctx, ticket.ID.String(), eventID.String(), ticket.Code)
	metrics.TicketIssued(string(paymentStatus))
	s.invalidateTicketCache(ctx, eventID)

	if err := s.notifier.PublishTicketIssued(ctx, ticket.ID, eventID, ticket.Code,
		ticket.AttendeeEmail, ticket.AttendeeName, event.Title); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish ticket issued notification", err, map[string]interface{}{
			"ticket_id": ticket.ID.String(),
		})
	}

	response := ticket.ToResponse()
	return &response, nil
}

func (s *service) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeGenAttempts; i++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}

		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGenExhausted
}

func (s *service) GetTicket(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	response := ticket.ToResponse()
	return &response, nil
}

func (s *service) GetEventTickets(ctx context.Context, actingUserID, eventID uuid.UUID, query TicketListQuery) (*PaginatedTickets, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if event.OrganizerID != actingUserID {
		return nil, ErrNotEventOwner
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	cacheKey := constants.BuildEventTicketsKey(eventID.String(), query.Page)
	if s.cacheService != nil {
		var cached PaginatedTickets
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	tickets, totalCount, err := s.repo.GetByEvent(ctx, eventID, query.Page, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get event tickets: %w", err)
	}

	responses := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		responses[i] = t.ToResponse()
	}

	result := &PaginatedTickets{
		Tickets:    responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, result, constants.TTL_EVENT_TICKETS); err != nil {
			s.log.ErrorWithContext(ctx, "failed to cache event tickets", err, map[string]interface{}{
				"cache_key": cacheKey,
			})
		}
	}

	return result, nil
}

func (s *service) GetEventTicketStats(ctx context.Context, actingUserID, eventID uuid.UUID) (*TicketStats, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if event.OrganizerID != actingUserID {
		return nil, ErrNotEventOwner
	}

	cacheKey := constants.BuildEventTicketStatsKey(eventID.String())
	if s.cacheService != nil {
		var cached TicketStats
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.repo.GetEventStats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket stats: %w", err)
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, stats, constants.TTL_EVENT_TICKET_STATS); err != nil {
			s.log.ErrorWithContext(ctx, "failed to cache ticket stats", err, map[string]interface{}{
				"cache_key": cacheKey,
			})
		}
	}

	return stats, nil
}

func (s *service) GetMyTickets(ctx context.Context, attendeeEmail string) ([]TicketResponse, error) {
	tickets, err := s.repo.GetByAttendeeEmail(ctx, attendeeEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}

	responses := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		responses[i] = t.ToResponse()
	}

	return responses, nil
}
