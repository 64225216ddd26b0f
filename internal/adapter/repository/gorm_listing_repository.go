package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	apperrors "campusmarket/pkg/errors"
)

type gormListingRepository struct {
	db *gorm.DB
}

func NewGormListingRepository(db *gorm.DB) repository.ListingRepository {
	return &gormListingRepository{db: db}
}

func (r *gormListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	// GORM creates the listing and its Images association in one
	// transaction; a failed image row rolls back the listing too.
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *gormListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	var listing entity.Listing
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Category").
		Preload("Owner").
		First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Listing", err)
		}
		return nil, err
	}
	return &listing, nil
}

func (r *gormListingRepository) List(ctx context.Context, filter repository.ListingFilter, limit, offset int) ([]*entity.Listing, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Listing{})

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Query != "" {
		// lower() keeps the match case-insensitive on both postgres and
		// sqlite.
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []*entity.Listing
	err := q.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *gormListingRepository) Newest(ctx context.Context, listingType string, n int) ([]*entity.Listing, error) {
	var listings []*entity.Listing
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("type = ?", listingType).
		Order("created_at DESC").
		Limit(n).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *gormListingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&entity.ListingImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Listing{}, "id = ?", id).Error
	})
}

func (r *gormListingRepository) ClearOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Listing{}).
		Where("owner_id = ?", ownerID).
		Update("owner_id", nil).Error
}

type gormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &gormCategoryRepository{db: db}
}

func (r *gormCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *gormCategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Category", err)
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormCategoryRepository) GetBySlug(ctx context.Context, kind, slug string) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).First(&category, "kind = ? AND slug = ?", kind, slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Category", err)
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormCategoryRepository) List(ctx context.Context, kind string) ([]*entity.Category, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var categories []*entity.Category
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
