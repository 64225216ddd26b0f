package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type ListingFilter struct {
	Type       string
	CategoryID string
	OwnerID    string
	Query      string
}

type ListingRepository interface {
	// Create persists the listing and its images atomically: either the
	// listing row and every image row land, or nothing does.
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	List(ctx context.Context, filter ListingFilter, limit, offset int) ([]*entity.Listing, int64, error)
	Newest(ctx context.Context, listingType string, n int) ([]*entity.Listing, error)
	Delete(ctx context.Context, id string) error
	// ClearOwner detaches all listings from a deleted owner, keeping the
	// rows themselves.
	ClearOwner(ctx context.Context, ownerID string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetBySlug(ctx context.Context, kind, slug string) (*entity.Category, error)
	List(ctx context.Context, kind string) ([]*entity.Category, error)
}
