package authorizations

import (
	"context"
	"errors"
	"fmt"

	"ingrezzi/internal/auth"
	"ingrezzi/internal/events"
	"ingrezzi/internal/notifications"
	"ingrezzi/internal/users"
	"ingrezzi/pkg/logger"
	"ingrezzi/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotOrganizer  = errors.New("only the event organizer can manage check-in access")
	ErrEventNotFound = errors.New("event not found")
	ErrUserNotFound  = errors.New("no account exists with that email")
	ErrGrantExists   = errors.New("user already has check-in access for this event")
	ErrGrantNotFound = errors.New("authorization grant not found")
	ErrSelfGrant     = errors.New("the organizer is always authorized and cannot be granted access")
)

// ProfileStore is the slice of the auth repository needed to resolve grant
// targets. A missing profile surfaces as auth.ErrUserNotFound, matching the
// auth repository's contract.
type ProfileStore interface {
	GetProfileByEmail(ctx context.Context, email string) (*users.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*users.Profile, error)
}

// Service resolves and mutates check-in authorization. Resolution is a pure
// read: the organizer is authorized implicitly, everyone else needs an
// approved grant row. Mutation is organizer-only.
type Service interface {
	IsAuthorized(ctx context.Context, userID, eventID, organizerID uuid.UUID) (bool, error)
	Grant(ctx context.Context, granterID, eventID uuid.UUID, targetEmail string) (*GrantResponse, error)
	Revoke(ctx context.Context, callerID, grantID uuid.UUID) error
	ListForEvent(ctx context.Context, callerID, eventID uuid.UUID) ([]GrantResponse, error)
}

type service struct {
	repo      Repository
	eventRepo events.Repository
	profiles  ProfileStore
	notifier  notifications.Service
	log       *logger.Logger
}

func NewService(repo Repository, eventRepo events.Repository, profiles ProfileStore, notifier notifications.Service) Service {
	return &service{
		repo:      repo,
		eventRepo: eventRepo,
		profiles:  profiles,
		notifier:  notifier,
		log:       logger.GetDefault(),
	}
}

// IsAuthorized decides whether userID may redeem tickets for eventID. The
// organizer's authority is implicit and unrevokable; all other access comes
// from an approved grant. Pending, denied and absent grants all deny.
func (s *service) IsAuthorized(ctx context.Context, userID, eventID, organizerID uuid.UUID) (bool, error) {
	if userID == organizerID {
		return true, nil
	}

	grant, err := s.repo.FindForUser(eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up authorization grant: %w", err)
	}

	return grant.Status.Authorizes(), nil
}

func (s *service) Grant(ctx context.Context, granterID, eventID uuid.UUID, targetEmail string) (*GrantResponse, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if event.OrganizerID != granterID {
		return nil, ErrNotOrganizer
	}

	target, err := s.profiles.GetProfileByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve grant target: %w", err)
	}

	if target.ID == event.OrganizerID {
		return nil, ErrSelfGrant
	}

	if _, err := s.repo.FindForUser(eventID, target.ID); err == nil {
		return nil, ErrGrantExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing grant: %w", err)
	}

	grant := &Grant{
		EventID:          eventID,
		AuthorizedUserID: target.ID,
		AuthorizedBy:     granterID,
		Status:           GrantStatusApproved,
	}

	if err := s.repo.Create(grant); err != nil {
		// Unique (event_id, authorized_user_id) backs the conflict check
		// against concurrent duplicate requests.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGrantExists
		}
		return nil, fmt.Errorf("failed to create grant: %w", err)
	}

	s.log.LogGrantChanged(ctx, "granted", eventID.String(), target.ID.String(), granterID.String())
	metrics.GrantMutated("granted")

	if err := s.notifier.PublishGrantCreated(ctx, eventID, target.Email, target.Name, event.Title); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish grant notification", err, map[string]interface{}{
			"grant_id": grant.ID.String(),
		})
	}

	resp := grant.ToResponse()
	resp.UserName = target.Name
	resp.UserEmail = target.Email
	return &resp, nil
}

func (s *service) Revoke(ctx context.Context, callerID, grantID uuid.UUID) error {
	grant, err := s.repo.GetByID(grantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGrantNotFound
		}
		return fmt.Errorf("failed to get grant: %w", err)
	}

	event, err := s.eventRepo.GetByID(grant.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if event.OrganizerID != callerID {
		return ErrNotOrganizer
	}

	affected, err := s.repo.Delete(grantID)
	if err != nil {
		return fmt.Errorf("failed to revoke grant: %w", err)
	}
	if affected == 0 {
		return ErrGrantNotFound
	}

	s.log.LogGrantChanged(ctx, "revoked", grant.EventID.String(), grant.AuthorizedUserID.String(), callerID.String())
	metrics.GrantMutated("revoked")

	if target, err := s.profiles.GetProfileByID(ctx, grant.AuthorizedUserID.String()); err == nil {
		if err := s.notifier.PublishGrantRevoked(ctx, grant.EventID, target.Email, target.Name, event.Title); err != nil {
			s.log.ErrorWithContext(ctx, "failed to publish revocation notification", err, map[string]interface{}{
				"grant_id": grantID.String(),
			})
		}
	}

	return nil
}

func (s *service) ListForEvent(ctx context.Context, callerID, eventID uuid.UUID) ([]GrantResponse, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if event.OrganizerID != callerID {
		return nil, ErrNotOrganizer
	}

	grants, err := s.repo.ListForEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}

	responses := make([]GrantResponse, len(grants))
	for i := range grants {
		responses[i] = grants[i].ToResponse()
	}
	return responses, nil
}
