package usecase

import (
	"context"
	"strings"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type RatingUseCase struct {
	ratingRepo repository.RatingRepository
	userRepo   repository.UserRepository
}

func NewRatingUseCase(ratingRepo repository.RatingRepository, userRepo repository.UserRepository) *RatingUseCase {
	return &RatingUseCase{ratingRepo: ratingRepo, userRepo: userRepo}
}

type SubmitRatingInput struct {
	SellerID      string
	ReviewerEmail string
	ReviewerName  string
	Score         int
	ReviewText    string
}

// SubmitRating creates or replaces the reviewer's rating for a seller. The
// (seller, reviewer email) pair is unique: a second submission overwrites
// the score and text instead of adding a row. Returns created=false on an
// update.
func (uc *RatingUseCase) SubmitRating(ctx context.Context, input SubmitRatingInput) (*entity.SellerRating, bool, error) {
	if input.Score < 1 || input.Score > 5 {
		return nil, false, errors.Validation(map[string]string{"score": "score must be between 1 and 5"})
	}
	reviewerEmail := strings.ToLower(strings.TrimSpace(input.ReviewerEmail))
	if reviewerEmail == "" {
		return nil, false, errors.Validation(map[string]string{"reviewer_email": "reviewer email is required"})
	}

	seller, err := uc.userRepo.GetByID(ctx, input.SellerID)
	if err != nil {
		return nil, false, errors.NotFound("Seller", err)
	}
	if seller.Profile == nil || !seller.Profile.IsSeller {
		return nil, false, errors.BadRequest("This user is not a seller", nil)
	}
	if strings.EqualFold(seller.Email, reviewerEmail) {
		return nil, false, errors.BadRequest("You cannot rate yourself", nil)
	}

	reviewerName := strings.TrimSpace(input.ReviewerName)
	if reviewerName == "" {
		// Default the display name to the email local part.
		reviewerName = reviewerEmail
		if at := strings.Index(reviewerEmail, "@"); at > 0 {
			reviewerName = reviewerEmail[:at]
		}
	}

	var reviewerUserID *string
	if reviewer, err := uc.userRepo.GetByEmail(ctx, reviewerEmail); err == nil {
		reviewerUserID = &reviewer.ID
	}

	existing, err := uc.ratingRepo.GetBySellerAndReviewer(ctx, seller.ID, reviewerEmail)
	if err == nil {
		existing.Score = input.Score
		existing.ReviewText = strings.TrimSpace(input.ReviewText)
		existing.ReviewerName = reviewerName
		existing.ReviewerUserID = reviewerUserID
		// Refresh the seller snapshot while the seller still exists.
		existing.SellerName = seller.FullName()
		existing.SellerEmail = seller.Email
		if err := uc.ratingRepo.Update(ctx, existing); err != nil {
			return nil, false, errors.Internal("Failed to update rating", err)
		}
		return existing, false, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, false, errors.Internal("Failed to look up rating", err)
	}

	rating := &entity.SellerRating{
		SellerID:       &seller.ID,
		SellerName:     seller.FullName(),
		SellerEmail:    seller.Email,
		ReviewerEmail:  reviewerEmail,
		ReviewerName:   reviewerName,
		ReviewerUserID: reviewerUserID,
		Score:          input.Score,
		ReviewText:     strings.TrimSpace(input.ReviewText),
	}
	if err := uc.ratingRepo.Create(ctx, rating); err != nil {
		return nil, false, errors.Internal("Failed to create rating", err)
	}
	return rating, true, nil
}

func (uc *RatingUseCase) ListRatings(ctx context.Context, sellerID string, limit, offset int) ([]*entity.SellerRating, int64, error) {
	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, 0, errors.NotFound("Seller", err)
	}
	return uc.ratingRepo.ListBySeller(ctx, sellerID, limit, offset)
}

func (uc *RatingUseCase) Stats(ctx context.Context, sellerID string) (*entity.RatingStats, error) {
	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, errors.NotFound("Seller", err)
	}
	return uc.ratingRepo.Stats(ctx, sellerID)
}
