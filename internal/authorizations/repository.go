package authorizations

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(grant *Grant) error
	GetByID(id uuid.UUID) (*Grant, error)
	FindForUser(eventID, userID uuid.UUID) (*Grant, error)
	Delete(id uuid.UUID) (int64, error)
	ListForEvent(eventID uuid.UUID) ([]GrantWithProfile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(grant *Grant) error {
	return r.db.Create(grant).Error
}

func (r *repository) GetByID(id uuid.UUID) (*Grant, error) {
	var grant Grant
	err := r.db.Where("id = ?", id).First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *repository) FindForUser(eventID, userID uuid.UUID) (*Grant, error) {
	var grant Grant
	err := r.db.Where("event_id = ? AND authorized_user_id = ?", eventID, userID).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *repository) Delete(id uuid.UUID) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&Grant{})
	return result.RowsAffected, result.Error
}

func (r *repository) ListForEvent(eventID uuid.UUID) ([]GrantWithProfile, error) {
	var grants []GrantWithProfile
	err := r.db.Model(&Grant{}).
		Select("event_authorizations.*, profiles.name AS user_name, profiles.email AS user_email").
		Joins("JOIN profiles ON profiles.id = event_authorizations.authorized_user_id").
		Where("event_authorizations.event_id = ?", eventID).
		Order("event_authorizations.created_at ASC").
		Scan(&grants).Error
	return grants, err
}
