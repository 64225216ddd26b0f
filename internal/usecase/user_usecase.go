package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	listingRepo  repository.ListingRepository
	ratingRepo   repository.RatingRepository
	imageStorage ImageStorage
}

func NewUserUseCase(
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	ratingRepo repository.RatingRepository,
	imageStorage ImageStorage,
) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		listingRepo:  listingRepo,
		ratingRepo:   ratingRepo,
		imageStorage: imageStorage,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	FirstName       *string
	LastName        *string
	PhoneNumber     *string
	Bio             *string
	IsSeller        *bool
	ProvidesService *bool
}

// UpdateProfile applies a partial update; nil fields are left untouched.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, errors.Internal("User has no profile", nil)
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.PhoneNumber != nil {
		user.Profile.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Bio != nil {
		user.Profile.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.IsSeller != nil {
		user.Profile.IsSeller = *input.IsSeller
	}
	if input.ProvidesService != nil {
		user.Profile.ProvidesService = *input.ProvidesService
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("Failed to update user", err)
	}
	if err := uc.userRepo.UpdateProfile(ctx, user.Profile); err != nil {
		return nil, errors.Internal("Failed to update profile", err)
	}
	return user, nil
}

// UpdateProfilePicture uploads the new image, swaps the stored path, and
// deletes the previous image best-effort.
func (uc *UserUseCase) UpdateProfilePicture(ctx context.Context, userID string, file io.Reader, contentType string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, errors.Internal("User has no profile", nil)
	}

	url, err := uc.imageStorage.UploadImage(ctx, file, contentType, "profiles")
	if err != nil {
		return nil, errors.BadRequest("Failed to upload profile picture", err)
	}

	old := user.Profile.PicturePath
	user.Profile.PicturePath = url
	if err := uc.userRepo.UpdateProfile(ctx, user.Profile); err != nil {
		return nil, errors.Internal("Failed to update profile", err)
	}

	if old != "" {
		if err := uc.imageStorage.DeleteImage(ctx, old); err != nil {
			logger.Warn("Failed to delete old profile picture for user %s: %v", userID, err)
		}
	}
	return user, nil
}

// DeleteAccount removes the user while preserving the marketplace record:
// any ratings the user received or wrote are tombstoned with an identity
// snapshot, and the user's listings are detached rather than deleted.
// Conversations keep their rows; the surviving participant still sees the
// history.
func (uc *UserUseCase) DeleteAccount(ctx context.Context, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.Profile != nil && user.Profile.IsSeller {
		if err := uc.ratingRepo.TombstoneSeller(ctx, user.ID, user.FullName(), user.Email); err != nil {
			return errors.Internal("Failed to detach seller ratings", err)
		}
	}

	label := fmt.Sprintf("Deleted User (%s)", user.Email)
	if err := uc.ratingRepo.TombstoneReviewer(ctx, user.ID, label); err != nil {
		return errors.Internal("Failed to detach reviewer ratings", err)
	}

	if err := uc.listingRepo.ClearOwner(ctx, user.ID); err != nil {
		return errors.Internal("Failed to detach listings", err)
	}

	if err := uc.userRepo.Delete(ctx, user.ID); err != nil {
		return errors.Internal("Failed to delete user", err)
	}
	return nil
}
