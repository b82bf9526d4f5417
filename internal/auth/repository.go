package auth

import (
	"context"
	"errors"

	"ingrezzi/internal/users"

	"gorm.io/gorm"
)

type Repository interface {
	CreateProfile(ctx context.Context, profile *users.Profile) error
	GetProfileByEmail(ctx context.Context, email string) (*users.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*users.Profile, error)
	UpdatePassword(ctx context.Context, userID string, hashedPassword string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) CreateProfile(ctx context.Context, profile *users.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) GetProfileByEmail(ctx context.Context, email string) (*users.Profile, error) {
	var profile users.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetProfileByID(ctx context.Context, id string) (*users.Profile, error) {
	var profile users.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) UpdatePassword(ctx context.Context, userID string, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&users.Profile{}).
		Where("id = ?", userID).
		Update("password", hashedPassword)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&users.Profile{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
