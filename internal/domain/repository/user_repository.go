package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type UserRepository interface {
	// Create persists the user and its profile in a single transaction.
	// The profile write is an explicit step here, not a hidden hook.
	Create(ctx context.Context, user *entity.User, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error

	GetProfileByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	// GetProfileByToken matches an exact token where verification is still
	// pending; expiry is the caller's concern.
	GetProfileByToken(ctx context.Context, token string) (*entity.Profile, error)
	GetPendingProfileByEmail(ctx context.Context, email string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, profile *entity.Profile) error
}
