package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	apperrors "campusmarket/pkg/errors"
)

type gormRatingRepository struct {
	db *gorm.DB
}

func NewGormRatingRepository(db *gorm.DB) repository.RatingRepository {
	return &gormRatingRepository{db: db}
}

func (r *gormRatingRepository) Create(ctx context.Context, rating *entity.SellerRating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *gormRatingRepository) Update(ctx context.Context, rating *entity.SellerRating) error {
	return r.db.WithContext(ctx).Save(rating).Error
}

func (r *gormRatingRepository) GetBySellerAndReviewer(ctx context.Context, sellerID, reviewerEmail string) (*entity.SellerRating, error) {
	var rating entity.SellerRating
	err := r.db.WithContext(ctx).
		First(&rating, "seller_id = ? AND reviewer_email = ?", sellerID, reviewerEmail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Rating", err)
		}
		return nil, err
	}
	return &rating, nil
}

func (r *gormRatingRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.SellerRating, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.SellerRating{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []*entity.SellerRating
	err := q.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&ratings).Error
	if err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}

func (r *gormRatingRepository) Stats(ctx context.Context, sellerID string) (*entity.RatingStats, error) {
	base := r.db.WithContext(ctx).Model(&entity.SellerRating{}).Where("seller_id = ?", sellerID)

	stats := &entity.RatingStats{Distribution: make(map[int]int, 5)}

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalRatings).Error; err != nil {
		return nil, err
	}
	if stats.TotalRatings == 0 {
		for i := 1; i <= 5; i++ {
			stats.Distribution[i] = 0
		}
		return stats, nil
	}

	var avg float64
	if err := base.Session(&gorm.Session{}).Select("AVG(score)").Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats.AverageRating = avg

	if err := base.Session(&gorm.Session{}).
		Where("reviewer_user_id IS NOT NULL").
		Count(&stats.VerifiedReviews).Error; err != nil {
		return nil, err
	}
	stats.AnonymousReviews = stats.TotalRatings - stats.VerifiedReviews

	type bucket struct {
		Score int
		N     int
	}
	var buckets []bucket
	if err := base.Session(&gorm.Session{}).
		Select("score, COUNT(*) AS n").
		Group("score").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}
	for i := 1; i <= 5; i++ {
		stats.Distribution[i] = 0
	}
	for _, b := range buckets {
		stats.Distribution[b.Score] = b.N
	}
	return stats, nil
}

func (r *gormRatingRepository) TombstoneSeller(ctx context.Context, sellerID, sellerName, sellerEmail string) error {
	return r.db.WithContext(ctx).
		Model(&entity.SellerRating{}).
		Where("seller_id = ?", sellerID).
		Updates(map[string]interface{}{
			"seller_id":          nil,
			"seller_was_deleted": true,
			"seller_name":        sellerName,
			"seller_email":       sellerEmail,
		}).Error
}

func (r *gormRatingRepository) TombstoneReviewer(ctx context.Context, reviewerUserID, label string) error {
	return r.db.WithContext(ctx).
		Model(&entity.SellerRating{}).
		Where("reviewer_user_id = ?", reviewerUserID).
		Updates(map[string]interface{}{
			"reviewer_user_id":         nil,
			"reviewer_account_deleted": true,
			"reviewer_name":            label,
		}).Error
}
