package authorizations

import (
	"context"
	"testing"
	"time"

	"ingrezzi/internal/auth"
	"ingrezzi/internal/events"
	"ingrezzi/internal/notifications"
	"ingrezzi/internal/shared/config"
	"ingrezzi/internal/users"
	"ingrezzi/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGrantRepo struct {
	grants map[uuid.UUID]*Grant
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: make(map[uuid.UUID]*Grant)}
}

func (f *fakeGrantRepo) Create(grant *Grant) error {
	for _, g := range f.grants {
		if g.EventID == grant.EventID && g.AuthorizedUserID == grant.AuthorizedUserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	copied := *grant
	f.grants[grant.ID] = &copied
	return nil
}

func (f *fakeGrantRepo) GetByID(id uuid.UUID) (*Grant, error) {
	g, ok := f.grants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *g
	return &copied, nil
}

func (f *fakeGrantRepo) FindForUser(eventID, userID uuid.UUID) (*Grant, error) {
	for _, g := range f.grants {
		if g.EventID == eventID && g.AuthorizedUserID == userID {
			copied := *g
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGrantRepo) Delete(id uuid.UUID) (int64, error) {
	if _, ok := f.grants[id]; !ok {
		return 0, nil
	}
	delete(f.grants, id)
	return 1, nil
}

func (f *fakeGrantRepo) ListForEvent(eventID uuid.UUID) ([]GrantWithProfile, error) {
	var out []GrantWithProfile
	for _, g := range f.grants {
		if g.EventID == eventID {
			out = append(out, GrantWithProfile{Grant: *g})
		}
	}
	return out, nil
}

type fakeEventRepo struct {
	events map[uuid.UUID]*events.Event
}

func (f *fakeEventRepo) Create(event *events.Event) error { return nil }

func (f *fakeEventRepo) GetByID(id uuid.UUID) (*events.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) Update(id uuid.UUID, updates map[string]interface{}) (*events.Event, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEventRepo) Delete(id uuid.UUID) error { return nil }

func (f *fakeEventRepo) GetAll(query events.EventListQuery) ([]events.Event, int64, error) {
	return nil, 0, nil
}

func (f *fakeEventRepo) GetByOrganizer(organizerID uuid.UUID) ([]events.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) GetUpcomingEvents(limit int) ([]events.Event, error) { return nil, nil }

func (f *fakeEventRepo) CountIssuedTickets(eventID uuid.UUID) (int64, error) { return 0, nil }

type fakeProfileStore struct {
	byEmail map[string]*users.Profile
	byID    map[string]*users.Profile
}

// The fake returns the same sentinel the auth repository does for a missing
// profile, so these tests exercise the production error contract.
func (f *fakeProfileStore) GetProfileByEmail(ctx context.Context, email string) (*users.Profile, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return p, nil
}

func (f *fakeProfileStore) GetProfileByID(ctx context.Context, id string) (*users.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return p, nil
}

type resolverFixture struct {
	service     *service
	repo        *fakeGrantRepo
	event       *events.Event
	organizerID uuid.UUID
	staff       *users.Profile
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	organizerID := uuid.New()
	event := &events.Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Title:       "Festival X",
		Date:        time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Status:      events.StatusPublished,
	}

	staff := &users.Profile{
		ID:    uuid.New(),
		Name:  "Sam Staff",
		Email: "staff@example.com",
	}
	organizer := &users.Profile{
		ID:          organizerID,
		Name:        "Olivia Organizer",
		Email:       "organizer@example.com",
		IsOrganizer: true,
	}

	repo := newFakeGrantRepo()
	notifier, err := notifications.NewService(&config.Config{})
	require.NoError(t, err)

	svc := &service{
		repo:      repo,
		eventRepo: &fakeEventRepo{events: map[uuid.UUID]*events.Event{event.ID: event}},
		profiles: &fakeProfileStore{
			byEmail: map[string]*users.Profile{
				staff.Email:     staff,
				organizer.Email: organizer,
			},
			byID: map[string]*users.Profile{
				staff.ID.String():     staff,
				organizer.ID.String(): organizer,
			},
		},
		notifier: notifier,
		log:      logger.GetDefault(),
	}

	return &resolverFixture{
		service:     svc,
		repo:        repo,
		event:       event,
		organizerID: organizerID,
		staff:       staff,
	}
}

func TestIsAuthorized_OrganizerImplicit(t *testing.T) {
	fx := newResolverFixture(t)

	authorized, err := fx.service.IsAuthorized(context.Background(), fx.organizerID, fx.event.ID, fx.organizerID)
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestIsAuthorized_NoGrantDenies(t *testing.T) {
	fx := newResolverFixture(t)

	authorized, err := fx.service.IsAuthorized(context.Background(), fx.staff.ID, fx.event.ID, fx.organizerID)
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestIsAuthorized_GrantStatusDecides(t *testing.T) {
	fx := newResolverFixture(t)

	cases := []struct {
		status     GrantStatus
		authorized bool
	}{
		{GrantStatusApproved, true},
		{GrantStatusPending, false},
		{GrantStatusDenied, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			userID := uuid.New()
			err := fx.repo.Create(&Grant{
				EventID:          fx.event.ID,
				AuthorizedUserID: userID,
				AuthorizedBy:     fx.organizerID,
				Status:           tc.status,
			})
			require.NoError(t, err)

			authorized, err := fx.service.IsAuthorized(context.Background(), userID, fx.event.ID, fx.organizerID)
			require.NoError(t, err)
			assert.Equal(t, tc.authorized, authorized)
		})
	}
}

func TestGrant_CreatesApprovedGrant(t *testing.T) {
	fx := newResolverFixture(t)

	resp, err := fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, fx.staff.Email)
	require.NoError(t, err)
	assert.Equal(t, GrantStatusApproved, resp.Status)
	assert.Equal(t, fx.staff.Name, resp.UserName)
	assert.Equal(t, fx.staff.Email, resp.UserEmail)

	authorized, err := fx.service.IsAuthorized(context.Background(), fx.staff.ID, fx.event.ID, fx.organizerID)
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestGrant_OnlyOrganizerMayGrant(t *testing.T) {
	fx := newResolverFixture(t)

	_, err := fx.service.Grant(context.Background(), uuid.New(), fx.event.ID, fx.staff.Email)
	assert.ErrorIs(t, err, ErrNotOrganizer)
	assert.Empty(t, fx.repo.grants)
}

func TestGrant_UnknownEmail(t *testing.T) {
	fx := newResolverFixture(t)

	_, err := fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGrant_UnknownEvent(t *testing.T) {
	fx := newResolverFixture(t)

	_, err := fx.service.Grant(context.Background(), fx.organizerID, uuid.New(), fx.staff.Email)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGrant_DuplicateConflicts(t *testing.T) {
	fx := newResolverFixture(t)

	_, err := fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, fx.staff.Email)
	require.NoError(t, err)

	_, err = fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, fx.staff.Email)
	assert.ErrorIs(t, err, ErrGrantExists)
	assert.Len(t, fx.repo.grants, 1)
}

func TestGrant_OrganizerCannotGrantThemselves(t *testing.T) {
	fx := newResolverFixture(t)

	_, err := fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, "organizer@example.com")
	assert.ErrorIs(t, err, ErrSelfGrant)
}

func TestRevoke_RemovesAuthorization(t *testing.T) {
	fx := newResolverFixture(t)

	resp, err := fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, fx.staff.Email)
	require.NoError(t, err)

	grantID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	err = fx.service.Revoke(context.Background(), fx.organizerID, grantID)
	require.NoError(t, err)

	authorized, err := fx.service.IsAuthorized(context.Background(), fx.staff.ID, fx.event.ID, fx.organizerID)
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestRevoke_OnlyOrganizerMayRevoke(t *testing.T) {
	fx := newResolverFixture(t)

	resp, err := fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, fx.staff.Email)
	require.NoError(t, err)

	grantID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	err = fx.service.Revoke(context.Background(), uuid.New(), grantID)
	assert.ErrorIs(t, err, ErrNotOrganizer)

	// Grant survives the denied attempt.
	authorized, err := fx.service.IsAuthorized(context.Background(), fx.staff.ID, fx.event.ID, fx.organizerID)
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestRevoke_UnknownGrant(t *testing.T) {
	fx := newResolverFixture(t)

	err := fx.service.Revoke(context.Background(), fx.organizerID, uuid.New())
	assert.ErrorIs(t, err, ErrGrantNotFound)
}

func TestListForEvent_OrganizerOnly(t *testing.T) {
	fx := newResolverFixture(t)

	_, err := fx.service.Grant(context.Background(), fx.organizerID, fx.event.ID, fx.staff.Email)
	require.NoError(t, err)

	grants, err := fx.service.ListForEvent(context.Background(), fx.organizerID, fx.event.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	_, err = fx.service.ListForEvent(context.Background(), fx.staff.ID, fx.event.ID)
	assert.ErrorIs(t, err, ErrNotOrganizer)
}
