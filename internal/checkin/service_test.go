package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ingrezzi/internal/authorizations"
	"ingrezzi/internal/events"
	"ingrezzi/internal/notifications"
	"ingrezzi/internal/shared/config"
	"ingrezzi/internal/shared/constants"
	"ingrezzi/internal/tickets"
	"ingrezzi/pkg/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore is a mutex-backed in-memory Repository so that concurrent
// redemptions exercise the same single-winner semantics the conditional
// UPDATE gives us in Postgres.
type fakeStore struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*tickets.Ticket
	events  map[uuid.UUID]*events.Event
	records []*Record

	failAppend bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets: make(map[uuid.UUID]*tickets.Ticket),
		events:  make(map[uuid.UUID]*events.Event),
	}
}

func (f *fakeStore) GetTicketByCode(code string) (*tickets.Ticket, error) {
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

func (f *fakeStore) GetTicketByID(id uuid.UUID) (*tickets.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) GetEventByID(id uuid.UUID) (*events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) MarkRedeemed(ticketID uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[ticketID]
	if !ok || t.CheckedIn {
		return false, nil
	}
	t.CheckedIn = true
	t.CheckedInAt = &at
	return true, nil
}

func (f *fakeStore) AppendRecord(record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend {
		return errors.New("checkins table unavailable")
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) ListForEvent(eventID uuid.UUID, limit int) ([]RecordWithTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []RecordWithTicket
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := f.records[i]
		if r.EventID != eventID {
			continue
		}
		t := f.tickets[r.TicketID]
		out = append(out, RecordWithTicket{
			Record:       *r,
			TicketCode:   t.Code,
			AttendeeName: t.AttendeeName,
		})
	}
	return out, nil
}

// fakeResolver authorizes a fixed set of users per event, plus the
// organizer implicitly.
type fakeResolver struct {
	allowed map[uuid.UUID]map[uuid.UUID]bool // eventID -> userID -> allowed
}

func (f *fakeResolver) IsAuthorized(ctx context.Context, userID, eventID, organizerID uuid.UUID) (bool, error) {
	if userID == organizerID {
		return true, nil
	}
	return f.allowed[eventID][userID], nil
}

func (f *fakeResolver) Grant(ctx context.Context, granterID, eventID uuid.UUID, targetEmail string) (*authorizations.GrantResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeResolver) Revoke(ctx context.Context, callerID, grantID uuid.UUID) error {
	return errors.New("not implemented")
}

func (f *fakeResolver) ListForEvent(ctx context.Context, callerID, eventID uuid.UUID) ([]authorizations.GrantResponse, error) {
	return nil, errors.New("not implemented")
}

type engineFixture struct {
	store   *fakeStore
	service *service
	event   *events.Event
	ticket  *tickets.Ticket
	staffID uuid.UUID
	ownerID uuid.UUID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	store := newFakeStore()

	ownerID := uuid.New()
	staffID := uuid.New()

	event := &events.Event{
		ID:          uuid.New(),
		OrganizerID: ownerID,
		Title:       "Festival X",
		Date:        time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Time:        "19:00",
		Location:    "Parque Central",
		Status:      events.StatusPublished,
	}
	store.events[event.ID] = event

	ticket := &tickets.Ticket{
		ID:            uuid.New(),
		EventID:       event.ID,
		Code:          "ING-ABC12345",
		AttendeeName:  "Ana Lima",
		AttendeeEmail: "ana@example.com",
		PaymentStatus: tickets.PaymentStatusCompleted,
	}
	store.tickets[ticket.ID] = ticket

	resolver := &fakeResolver{
		allowed: map[uuid.UUID]map[uuid.UUID]bool{
			event.ID: {staffID: true},
		},
	}

	notifier, err := notifications.NewService(&config.Config{})
	require.NoError(t, err)

	svc := &service{
		repo:     store,
		resolver: resolver,
		notifier: notifier,
		log:      logger.GetDefault(),
		now:      time.Now,
	}

	return &engineFixture{
		store:   store,
		service: svc,
		event:   event,
		ticket:  ticket,
		staffID: staffID,
		ownerID: ownerID,
	}
}

func TestRedeem_FirstScanWins(t *testing.T) {
	fx := newEngineFixture(t)
	at := time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return at }

	result, err := fx.service.Redeem(context.Background(), "ING-ABC12345", fx.staffID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRedeemed, result.Outcome)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, "ING-ABC12345", result.Ticket.Code)
	assert.Equal(t, "Ana Lima", result.Ticket.AttendeeName)
	require.NotNil(t, result.Event)
	assert.Equal(t, "Festival X", result.Event.Title)
	require.NotNil(t, result.CheckedInAt)
	assert.True(t, result.CheckedInAt.Equal(at))

	stored := fx.store.tickets[fx.ticket.ID]
	assert.True(t, stored.CheckedIn)

	require.Len(t, fx.store.records, 1)
	assert.Equal(t, fx.ticket.ID, fx.store.records[0].TicketID)
	assert.Equal(t, fx.staffID, fx.store.records[0].CheckedInBy)
	assert.True(t, fx.store.records[0].CheckedInAt.Equal(at))
}

func TestRedeem_SecondScanReportsOriginalTimestamp(t *testing.T) {
	fx := newEngineFixture(t)

	first := time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return first }
	result, err := fx.service.Redeem(context.Background(), "ING-ABC12345", fx.staffID)
	require.NoError(t, err)
	require.Equal(t, OutcomeRedeemed, result.Outcome)

	// A later scan, even by a different authorized user, reports when the
	// redemption actually happened, not when the retry arrived.
	fx.service.now = func() time.Time { return first.Add(5 * time.Minute) }
	result, err = fx.service.Redeem(context.Background(), "ING-ABC12345", fx.ownerID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyRedeemed, result.Outcome)
	require.NotNil(t, result.CheckedInAt)
	assert.True(t, result.CheckedInAt.Equal(first))

	// No second audit record.
	assert.Len(t, fx.store.records, 1)
}

func TestRedeem_ConcurrentScansHaveOneWinner(t *testing.T) {
	fx := newEngineFixture(t)

	var wg sync.WaitGroup
	outcomes := make(chan Outcome, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fx.service.Redeem(context.Background(), "ING-ABC12345", fx.staffID)
			assert.NoError(t, err)
			outcomes <- result.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	counts := map[Outcome]int{}
	for outcome := range outcomes {
		counts[outcome]++
	}
	assert.Equal(t, 1, counts[OutcomeRedeemed])
	assert.Equal(t, 1, counts[OutcomeAlreadyRedeemed])
	assert.Len(t, fx.store.records, 1)
}

func TestRedeem_UnknownCode(t *testing.T) {
	fx := newEngineFixture(t)

	result, err := fx.service.Redeem(context.Background(), "ING-ZZZZZZZZ", fx.staffID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeTicketNotFound, result.Outcome)
	assert.Nil(t, result.Ticket)

	assert.False(t, fx.store.tickets[fx.ticket.ID].CheckedIn)
	assert.Empty(t, fx.store.records)
}

func TestRedeem_EmptyCode(t *testing.T) {
	fx := newEngineFixture(t)

	result, err := fx.service.Redeem(context.Background(), "   ", fx.staffID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalidCode, result.Outcome)
}

func TestRedeem_UnauthorizedUserLeavesTicketUntouched(t *testing.T) {
	fx := newEngineFixture(t)
	stranger := uuid.New()

	result, err := fx.service.Redeem(context.Background(), "ING-ABC12345", stranger)

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnauthorized, result.Outcome)
	// The event is named so the scanner can tell the user what they lack
	// access to; the ticket itself is not disclosed.
	require.NotNil(t, result.Event)
	assert.Nil(t, result.Ticket)

	assert.False(t, fx.store.tickets[fx.ticket.ID].CheckedIn)
	assert.Empty(t, fx.store.records)
}

func TestRedeem_OrganizerIsImplicitlyAuthorized(t *testing.T) {
	fx := newEngineFixture(t)

	result, err := fx.service.Redeem(context.Background(), "ING-ABC12345", fx.ownerID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRedeemed, result.Outcome)
}

func TestRedeem_AuditFailureDoesNotRollBack(t *testing.T) {
	fx := newEngineFixture(t)
	fx.store.failAppend = true

	result, err := fx.service.Redeem(context.Background(), "ING-ABC12345", fx.staffID)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRedeemed, result.Outcome)
	assert.True(t, fx.store.tickets[fx.ticket.ID].CheckedIn)
	assert.Empty(t, fx.store.records)
}

func TestScanAllowed_NoRedisFailsOpen(t *testing.T) {
	fx := newEngineFixture(t)
	fx.service.cooldown = 2 * time.Second

	assert.True(t, fx.service.ScanAllowed(context.Background(), "ING-ABC12345"))
}

func TestScanAllowed_CooldownBlocksRapidDuplicate(t *testing.T) {
	fx := newEngineFixture(t)
	db, mock := redismock.NewClientMock()
	fx.service.redis = db
	fx.service.cooldown = 2 * time.Second

	key := constants.BuildScanCooldownKey("ING-ABC12345")
	mock.ExpectSetNX(key, 1, 2*time.Second).SetVal(true)
	mock.ExpectSetNX(key, 1, 2*time.Second).SetVal(false)

	assert.True(t, fx.service.ScanAllowed(context.Background(), "ING-ABC12345"))
	assert.False(t, fx.service.ScanAllowed(context.Background(), "ING-ABC12345"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanAllowed_RedisErrorFailsOpen(t *testing.T) {
	fx := newEngineFixture(t)
	db, mock := redismock.NewClientMock()
	fx.service.redis = db
	fx.service.cooldown = 2 * time.Second

	key := constants.BuildScanCooldownKey("ING-ABC12345")
	mock.ExpectSetNX(key, 1, 2*time.Second).SetErr(errors.New("connection refused"))

	assert.True(t, fx.service.ScanAllowed(context.Background(), "ING-ABC12345"))
}

func TestRecentCheckins(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.service.Redeem(context.Background(), "ING-ABC12345", fx.staffID)
	require.NoError(t, err)

	records, err := fx.service.RecentCheckins(context.Background(), fx.staffID, fx.event.ID, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ING-ABC12345", records[0].TicketCode)
	assert.Equal(t, "Ana Lima", records[0].AttendeeName)
}

func TestRecentCheckins_UnauthorizedUser(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.service.RecentCheckins(context.Background(), uuid.New(), fx.event.ID, 10)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRecentCheckins_UnknownEvent(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.service.RecentCheckins(context.Background(), fx.staffID, uuid.New(), 10)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
