package tickets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ingrezzi/internal/events"
	"ingrezzi/internal/notifications"
	"ingrezzi/internal/shared/config"
	"ingrezzi/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTicketRepo is mutex-backed so the concurrency test exercises the same
// serialization the locking transaction gives CreateWithCapacityCheck in
// Postgres.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*Ticket
	events  map[uuid.UUID]*events.Event
}

func newFakeTicketRepo(eventStore map[uuid.UUID]*events.Event) *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[uuid.UUID]*Ticket),
		events:  eventStore,
	}
}

func (f *fakeTicketRepo) CreateWithCapacityCheck(ctx context.Context, ticket *Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[ticket.EventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	if event.Capacity != nil {
		var issued int64
		for _, t := range f.tickets {
			if t.EventID == ticket.EventID {
				issued++
			}
		}
		if issued >= int64(*event.Capacity) {
			return ErrEventSoldOut
		}
	}

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTicketRepo) GetByCode(ctx context.Context, code string) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickets {
		if t.Code == code {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTicketRepo) GetByEvent(ctx context.Context, eventID uuid.UUID, page, limit int) ([]Ticket, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Ticket
	for _, t := range f.tickets {
		if t.EventID == eventID {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTicketRepo) GetByAttendeeEmail(ctx context.Context, email string) ([]Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Ticket
	for _, t := range f.tickets {
		if t.AttendeeEmail == email {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := f.GetByCode(ctx, code)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeTicketRepo) GetEventStats(ctx context.Context, eventID uuid.UUID) (*TicketStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &TicketStats{Revenue: decimal.Zero}
	for _, t := range f.tickets {
		if t.EventID != eventID {
			continue
		}
		stats.TotalIssued++
		if t.CheckedIn {
			stats.CheckedIn++
		}
		switch t.PaymentStatus {
		case PaymentStatusPending:
			stats.PendingPayment++
		case PaymentStatusCompleted:
			stats.CompletedPayment++
			stats.Revenue = stats.Revenue.Add(t.Price)
		}
	}
	return stats, nil
}

type fakeEventStore struct {
	events map[uuid.UUID]*events.Event
}

func (f *fakeEventStore) Create(event *events.Event) error { return nil }

func (f *fakeEventStore) GetByID(id uuid.UUID) (*events.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeEventStore) Update(id uuid.UUID, updates map[string]interface{}) (*events.Event, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEventStore) Delete(id uuid.UUID) error { return nil }

func (f *fakeEventStore) GetAll(query events.EventListQuery) ([]events.Event, int64, error) {
	return nil, 0, nil
}

func (f *fakeEventStore) GetByOrganizer(organizerID uuid.UUID) ([]events.Event, error) {
	return nil, nil
}

func (f *fakeEventStore) GetUpcomingEvents(limit int) ([]events.Event, error) { return nil, nil }

func (f *fakeEventStore) CountIssuedTickets(eventID uuid.UUID) (int64, error) { return 0, nil }

type issuerFixture struct {
	repo        *fakeTicketRepo
	service     Service
	freeEvent   *events.Event
	paidEvent   *events.Event
	draftEvent  *events.Event
	organizerID uuid.UUID
}

func newIssuerFixture(t *testing.T) *issuerFixture {
	t.Helper()

	organizerID := uuid.New()
	capacity := 2

	free := &events.Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Title:       "Community Meetup",
		Date:        time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		TicketType:  events.TicketTypeFree,
		Price:       decimal.Zero,
		Status:      events.StatusPublished,
	}
	paid := &events.Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Title:       "Festival X",
		Date:        time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		TicketType:  events.TicketTypePaid,
		Price:       decimal.NewFromFloat(120.00),
		Capacity:    &capacity,
		Status:      events.StatusPublished,
	}
	draft := &events.Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Title:       "Unreleased Workshop",
		TicketType:  events.TicketTypePaid,
		Status:      events.StatusDraft,
	}

	eventStore := &fakeEventStore{events: map[uuid.UUID]*events.Event{
		free.ID:  free,
		paid.ID:  paid,
		draft.ID: draft,
	}}
	repo := newFakeTicketRepo(eventStore.events)

	notifier, err := notifications.NewService(&config.Config{})
	require.NoError(t, err)

	svc := &service{
		repo:      repo,
		eventRepo: eventStore,
		notifier:  notifier,
		log:       logger.GetDefault(),
	}

	return &issuerFixture{
		repo:        repo,
		service:     svc,
		freeEvent:   free,
		paidEvent:   paid,
		draftEvent:  draft,
		organizerID: organizerID,
	}
}

func TestIssueTicket_FreeEventSettlesImmediately(t *testing.T) {
	fx := newIssuerFixture(t)

	resp, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
		EventID:       fx.freeEvent.ID.String(),
		AttendeeName:  "Ana Lima",
		AttendeeEmail: "ana@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, PaymentStatusCompleted, resp.PaymentStatus)
	assert.True(t, IsValidCode(resp.Code))
	assert.False(t, resp.CheckedIn)
}

func TestIssueTicket_PaidEventStartsPending(t *testing.T) {
	fx := newIssuerFixture(t)

	resp, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
		EventID:       fx.paidEvent.ID.String(),
		AttendeeName:  "Bruno Costa",
		AttendeeEmail: "bruno@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, resp.PaymentStatus)
	assert.True(t, resp.Price.Equal(decimal.NewFromFloat(120.00)))
}

func TestIssueTicket_DraftEventNotOnSale(t *testing.T) {
	fx := newIssuerFixture(t)

	_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
		EventID:       fx.draftEvent.ID.String(),
		AttendeeName:  "Carla Souza",
		AttendeeEmail: "carla@example.com",
	})

	assert.ErrorIs(t, err, ErrEventNotOnSale)
}

func TestIssueTicket_CapacityEnforced(t *testing.T) {
	fx := newIssuerFixture(t)

	for i := 0; i < 2; i++ {
		_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
			EventID:       fx.paidEvent.ID.String(),
			AttendeeName:  "Attendee",
			AttendeeEmail: "attendee@example.com",
		})
		require.NoError(t, err)
	}

	_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
		EventID:       fx.paidEvent.ID.String(),
		AttendeeName:  "Latecomer",
		AttendeeEmail: "late@example.com",
	})
	assert.ErrorIs(t, err, ErrEventSoldOut)
}

func TestIssueTicket_ConcurrentPurchasesCannotOversell(t *testing.T) {
	fx := newIssuerFixture(t)

	// Fill all but the last seat (capacity is 2).
	_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
		EventID:       fx.paidEvent.ID.String(),
		AttendeeName:  "Early Bird",
		AttendeeEmail: "early@example.com",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
				EventID:       fx.paidEvent.ID.String(),
				AttendeeName:  "Racer",
				AttendeeEmail: "racer@example.com",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var issued, soldOut int
	for err := range results {
		switch {
		case err == nil:
			issued++
		case errors.Is(err, ErrEventSoldOut):
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, issued)
	assert.Equal(t, 1, soldOut)

	_, count, err := fx.repo.GetByEvent(context.Background(), fx.paidEvent.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestIssueTicket_UnknownEvent(t *testing.T) {
	fx := newIssuerFixture(t)

	_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
		EventID:       uuid.New().String(),
		AttendeeName:  "Nobody",
		AttendeeEmail: "nobody@example.com",
	})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestIssueTicket_CodesAreUnique(t *testing.T) {
	fx := newIssuerFixture(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		resp, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
			EventID:       fx.freeEvent.ID.String(),
			AttendeeName:  "Attendee",
			AttendeeEmail: "attendee@example.com",
		})
		require.NoError(t, err)
		assert.False(t, seen[resp.Code])
		seen[resp.Code] = true
	}
}

func TestGetEventTicketStats_OwnerOnly(t *testing.T) {
	fx := newIssuerFixture(t)

	_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
		EventID:       fx.freeEvent.ID.String(),
		AttendeeName:  "Ana Lima",
		AttendeeEmail: "ana@example.com",
	})
	require.NoError(t, err)

	stats, err := fx.service.GetEventTicketStats(context.Background(), fx.organizerID, fx.freeEvent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalIssued)
	assert.Equal(t, int64(1), stats.CompletedPayment)

	_, err = fx.service.GetEventTicketStats(context.Background(), uuid.New(), fx.freeEvent.ID)
	assert.ErrorIs(t, err, ErrNotEventOwner)
}

func TestGetMyTickets_FiltersByEmail(t *testing.T) {
	fx := newIssuerFixture(t)

	for _, email := range []string{"ana@example.com", "ana@example.com", "bruno@example.com"} {
		_, err := fx.service.IssueTicket(context.Background(), IssueTicketRequest{
			EventID:       fx.freeEvent.ID.String(),
			AttendeeName:  "Attendee",
			AttendeeEmail: email,
		})
		require.NoError(t, err)
	}

	mine, err := fx.service.GetMyTickets(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
