package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *entity.SellerRating) error
	Update(ctx context.Context, rating *entity.SellerRating) error
	GetBySellerAndReviewer(ctx context.Context, sellerID, reviewerEmail string) (*entity.SellerRating, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.SellerRating, int64, error)
	Stats(ctx context.Context, sellerID string) (*entity.RatingStats, error)

	// TombstoneSeller nulls the seller reference on all of a seller's
	// ratings, flags them, and backfills the identity snapshot.
	TombstoneSeller(ctx context.Context, sellerID, sellerName, sellerEmail string) error
	// TombstoneReviewer nulls the reviewer reference and replaces the
	// display name with a synthetic deleted-user label.
	TombstoneReviewer(ctx context.Context, reviewerUserID, label string) error
}
