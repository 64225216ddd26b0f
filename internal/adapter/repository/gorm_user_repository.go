package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	apperrors "campusmarket/pkg/errors"
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *gormUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User", err)
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User", err)
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User", err)
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&entity.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.User{}, "id = ?", id).Error
	})
}

func (r *gormUserRepository) GetProfileByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).Preload("User").First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Profile", err)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) GetProfileByToken(ctx context.Context, token string) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&profile, "email_token = ? AND pending_email_verification = ?", token, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Profile", err)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) GetPendingProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.email = ? AND profiles.pending_email_verification = ?", email, true).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Profile", err)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
