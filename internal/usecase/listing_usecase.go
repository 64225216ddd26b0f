package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type ListingUseCase struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
	}
}

type CreateListingInput struct {
	Type            string
	Name            string
	Description     string
	Price           decimal.Decimal
	DiscountPercent decimal.Decimal
	CategoryID      string
	ImagePaths      []string
}

type HomeFeed struct {
	NewestProducts    []*entity.Listing  `json:"newest_products"`
	NewestServices    []*entity.Listing  `json:"newest_services"`
	ProductCategories []*entity.Category `json:"product_categories"`
	ServiceCategories []*entity.Category `json:"service_categories"`
}

var hundred = decimal.NewFromInt(100)

// CreateListing validates and creates a listing with its ordered images in
// one shot. Any validation failure leaves zero rows behind: the listing and
// its image rows are all-or-nothing.
func (uc *ListingUseCase) CreateListing(ctx context.Context, ownerID string, input CreateListingInput) (*entity.Listing, error) {
	fields := map[string]string{}

	if input.Type != entity.ListingTypeProduct && input.Type != entity.ListingTypeService {
		fields["type"] = "type must be one of: product service"
	}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if input.Price.IsNegative() {
		fields["price"] = "price cannot be negative"
	} else if input.Price.GreaterThan(entity.MaxListingPrice) {
		fields["price"] = fmt.Sprintf("price cannot exceed %s", entity.MaxListingPrice.StringFixed(2))
	}
	if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(hundred) {
		fields["discount"] = "discount must be between 0 and 100 percent"
	}
	if len(input.ImagePaths) > entity.MaxListingImages {
		fields["images"] = fmt.Sprintf("you can upload a maximum of %d images", entity.MaxListingImages)
	}
	if len(fields) > 0 {
		return nil, errors.Validation(fields)
	}

	category, err := uc.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Kind != input.Type {
		return nil, errors.BadRequest("Category does not match listing type", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, ownerID); err != nil {
		return nil, errors.NotFound("User", err)
	}

	// The discount is converted to an absolute amount once, here. Later
	// price edits never rescale it.
	discountAmount := input.Price.Mul(input.DiscountPercent).Div(hundred).Round(2)

	listing := &entity.Listing{
		Type:           input.Type,
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Price:          input.Price.Round(2),
		DiscountAmount: discountAmount,
		CategoryID:     category.ID,
		OwnerID:        &ownerID,
	}

	for i, path := range input.ImagePaths {
		listing.Images = append(listing.Images, entity.ListingImage{
			Path:         path,
			DisplayOrder: i,
		})
	}
	if len(input.ImagePaths) > 0 {
		// Mirror the first image for legacy single-image readers.
		listing.ImagePath = input.ImagePaths[0]
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, errors.Internal("Failed to create listing", err)
	}
	listing.Category = category
	return listing, nil
}

func (uc *ListingUseCase) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	return uc.listingRepo.GetByID(ctx, id)
}

func (uc *ListingUseCase) List(ctx context.Context, filter repository.ListingFilter, limit, offset int) ([]*entity.Listing, int64, error) {
	return uc.listingRepo.List(ctx, filter, limit, offset)
}

// Search does a substring match over name and description of both listing
// types.
func (uc *ListingUseCase) Search(ctx context.Context, query string, limit, offset int) ([]*entity.Listing, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, errors.BadRequest("Search query is required", nil)
	}
	return uc.listingRepo.List(ctx, repository.ListingFilter{Query: query}, limit, offset)
}

// Feed is the landing payload: the five newest listings per type plus the
// active categories.
func (uc *ListingUseCase) Feed(ctx context.Context) (*HomeFeed, error) {
	newestProducts, err := uc.listingRepo.Newest(ctx, entity.ListingTypeProduct, 5)
	if err != nil {
		return nil, errors.Internal("Failed to load newest products", err)
	}
	newestServices, err := uc.listingRepo.Newest(ctx, entity.ListingTypeService, 5)
	if err != nil {
		return nil, errors.Internal("Failed to load newest services", err)
	}
	productCategories, err := uc.categoryRepo.List(ctx, entity.ListingTypeProduct)
	if err != nil {
		return nil, errors.Internal("Failed to load categories", err)
	}
	serviceCategories, err := uc.categoryRepo.List(ctx, entity.ListingTypeService)
	if err != nil {
		return nil, errors.Internal("Failed to load categories", err)
	}
	return &HomeFeed{
		NewestProducts:    newestProducts,
		NewestServices:    newestServices,
		ProductCategories: productCategories,
		ServiceCategories: serviceCategories,
	}, nil
}

// Delete removes a listing. Only the owner (or an admin) may delete it.
func (uc *ListingUseCase) Delete(ctx context.Context, userID, listingID string) error {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.NotFound("User", err)
	}
	if !user.IsAdmin && (listing.OwnerID == nil || *listing.OwnerID != userID) {
		return errors.Forbidden("You don't have permission to delete this listing", nil)
	}

	return uc.listingRepo.Delete(ctx, listingID)
}

type CreateCategoryInput struct {
	Kind        string
	Name        string
	Description string
}

func (uc *ListingUseCase) CreateCategory(ctx context.Context, input CreateCategoryInput) (*entity.Category, error) {
	if input.Kind != entity.ListingTypeProduct && input.Kind != entity.ListingTypeService {
		return nil, errors.BadRequest("Invalid category type", nil)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.Validation(map[string]string{"name": "name is required"})
	}

	category := &entity.Category{
		Kind:        input.Kind,
		Name:        name,
		Slug:        Slugify(name),
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, errors.Conflict("Category already exists")
	}
	return category, nil
}

func (uc *ListingUseCase) ListCategories(ctx context.Context, kind string) ([]*entity.Category, error) {
	return uc.categoryRepo.List(ctx, kind)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
