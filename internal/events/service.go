package events

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ingrezzi/internal/shared/constants"
	"ingrezzi/internal/users"
	"ingrezzi/pkg/cache"
	"ingrezzi/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrNotEventOwner     = errors.New("only the event organizer can perform this action")
	ErrPaidPlanRequired  = errors.New("paid events require an active basic or premium plan")
	ErrEventNotEditable  = errors.New("event can no longer be updated")
	ErrInvalidTransition = errors.New("invalid event status transition")
	ErrEventHasTickets   = errors.New("cannot delete an event with issued tickets")
	ErrInvalidEventData  = errors.New("invalid event data")
)

// ProfileStore is the slice of the auth repository the events service needs
// for plan gating. Declared here to avoid importing the auth package.
type ProfileStore interface {
	GetProfileByID(ctx context.Context, id string) (*users.Profile, error)
}

type Service interface {
	SetCacheService(cacheService cache.Service)
	CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	GetUpcomingEvents(ctx context.Context, limit int) ([]EventResponse, error)
	GetOrganizerEvents(ctx context.Context, organizerID uuid.UUID) ([]EventResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error
}

type service struct {
	repo         Repository
	profiles     ProfileStore
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, profiles ProfileStore) Service {
	return &service{
		repo:     repo,
		profiles: profiles,
		log:      logger.GetDefault(),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// CanCreateEvent is the plan-gating predicate: free-plan organizers may
// create free events only; paid events require an active paid plan.
func CanCreateEvent(p *users.Profile, ticketType TicketType, now time.Time) bool {
	if !p.IsOrganizer {
		return false
	}
	if ticketType == TicketTypeFree {
		return true
	}
	return p.HasActivePaidPlan(now)
}

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.cacheService == nil {
		return nil
	}
	return s.cacheService.Set(ctx, key, value, ttl)
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return cache.ErrCacheMiss
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) invalidateEventCache(ctx context.Context, eventID *uuid.UUID) {
	if s.cacheService == nil {
		return
	}

	patterns := []string{constants.PATTERN_INVALIDATE_EVENTS_ALL}
	if eventID != nil {
		patterns = append(patterns, constants.BuildEventDetailKey(eventID.String())+"*")
	}

	for _, pattern := range patterns {
		if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
			s.log.ErrorWithContext(ctx, "failed to invalidate event cache", err, map[string]interface{}{
				"pattern": pattern,
			})
		}
	}
}

func (s *service) CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	ticketType := TicketType(req.TicketType)
	if !ticketType.IsValid() {
		return nil, fmt.Errorf("%w: unknown ticket type %q", ErrInvalidEventData, req.TicketType)
	}

	profile, err := s.profiles.GetProfileByID(ctx, organizerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load organizer profile: %w", err)
	}

	if !CanCreateEvent(profile, ticketType, time.Now()) {
		return nil, ErrPaidPlanRequired
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed event date", ErrInvalidEventData)
	}

	price := req.Price
	if ticketType == TicketTypeFree {
		price = decimal.Zero
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidEventData)
	}

	event := &Event{
		OrganizerID: organizerID,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		Location:    req.Location,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Price:       price,
		TicketType:  ticketType,
		ImageURL:    req.ImageURL,
		Status:      StatusDraft,
	}

	if err := s.repo.Create(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.log.LogEventCreated(ctx, event.ID.String(), organizerID.String())
	s.invalidateEventCache(ctx, nil)

	response := event.ToResponse()
	return &response, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	cacheKey := constants.BuildEventDetailKey(id.String())

	var cachedEvent EventResponse
	if err := s.getCache(ctx, cacheKey, &cachedEvent); err == nil {
		return &cachedEvent, nil
	}

	event, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	response := event.ToResponse()

	if err := s.setCache(ctx, cacheKey, response, constants.TTL_EVENT_DETAIL); err != nil {
		s.log.ErrorWithContext(ctx, "failed to cache event detail", err, map[string]interface{}{
			"event_id": id.String(),
		})
	}

	return &response, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	cacheKey := constants.BuildEventListKey(query.Page, query.Limit, query.Status)

	// Only plain listings are cached; filtered searches go to the database.
	cacheable := query.Search == "" && query.Location == "" && query.Category == "" &&
		query.DateFrom == "" && query.DateTo == ""

	if cacheable {
		var cachedResult PaginatedEvents
		if err := s.getCache(ctx, cacheKey, &cachedResult); err == nil {
			return &cachedResult, nil
		}
	}

	events, totalCount, err := s.repo.GetAll(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	eventResponses := make([]EventResponse, len(events))
	for i, event := range events {
		eventResponses[i] = event.ToResponse()
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(query.Limit)))

	result := &PaginatedEvents{
		Events:     eventResponses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}

	if cacheable {
		if err := s.setCache(ctx, cacheKey, result, constants.TTL_EVENT_LIST); err != nil {
			s.log.ErrorWithContext(ctx, "failed to cache event list", err, map[string]interface{}{
				"cache_key": cacheKey,
			})
		}
	}

	return result, nil
}

func (s *service) GetUpcomingEvents(ctx context.Context, limit int) ([]EventResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	cacheKey := constants.BuildUpcomingEventsKey(limit)

	var cachedResult []EventResponse
	if err := s.getCache(ctx, cacheKey, &cachedResult); err == nil {
		return cachedResult, nil
	}

	events, err := s.repo.GetUpcomingEvents(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = event.ToResponse()
	}

	if err := s.setCache(ctx, cacheKey, responses, constants.TTL_EVENT_UPCOMING); err != nil {
		s.log.ErrorWithContext(ctx, "failed to cache upcoming events", err, map[string]interface{}{
			"cache_key": cacheKey,
		})
	}

	return responses, nil
}

func (s *service) GetOrganizerEvents(ctx context.Context, organizerID uuid.UUID) ([]EventResponse, error) {
	events, err := s.repo.GetByOrganizer(organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organizer events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = event.ToResponse()
	}

	return responses, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	currentEvent, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if currentEvent.OrganizerID != actingUserID {
		return nil, ErrNotEventOwner
	}

	if !currentEvent.Status.CanBeUpdated() {
		return nil, ErrEventNotEditable
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed event date", ErrInvalidEventData)
		}
		updates["date"] = date
	}
	if req.Time != nil {
		updates["time"] = *req.Time
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.Price != nil {
		if currentEvent.TicketType == TicketTypeFree {
			return nil, fmt.Errorf("%w: free events cannot have a price", ErrInvalidEventData)
		}
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidEventData)
		}
		updates["price"] = *req.Price
	}
	if req.Status != nil {
		target := Status(*req.Status)
		if !target.IsValid() {
			return nil, fmt.Errorf("%w: unknown event status %q", ErrInvalidEventData, *req.Status)
		}
		if target != currentEvent.Status {
			if !currentEvent.Status.CanTransitionTo(target) {
				return nil, ErrInvalidTransition
			}
			updates["status"] = target
		}
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	updates["updated_at"] = time.Now()

	updatedEvent, err := s.repo.Update(id, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.invalidateEventCache(ctx, &id)

	response := updatedEvent.ToResponse()
	return &response, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error {
	currentEvent, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if currentEvent.OrganizerID != actingUserID {
		return ErrNotEventOwner
	}

	if !currentEvent.Status.CanBeDeleted() {
		return fmt.Errorf("%w: only draft events can be deleted", ErrEventNotEditable)
	}

	ticketCount, err := s.repo.CountIssuedTickets(id)
	if err != nil {
		return fmt.Errorf("failed to check issued tickets: %w", err)
	}
	if ticketCount > 0 {
		return ErrEventHasTickets
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.invalidateEventCache(ctx, &id)

	return nil
}
