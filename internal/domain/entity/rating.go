package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SellerRating survives the deletion of either account involved. The seller
// reference is nullable and a snapshot of the seller's display name/email is
// denormalized at save time, so tombstoning preserves the audit trail.
// At most one rating exists per (seller, reviewer email) pair; reviewers
// update in place rather than duplicating.
type SellerRating struct {
	ID string `json:"id" gorm:"primaryKey;size:36"`

	SellerID    *string `json:"seller_id,omitempty" gorm:"size:36;uniqueIndex:idx_ratings_seller_reviewer,priority:1"`
	Seller      *User   `json:"-" gorm:"foreignKey:SellerID"`
	SellerName  string  `json:"seller_name" gorm:"size:150"`
	SellerEmail string  `json:"seller_email" gorm:"size:100"`

	ReviewerEmail  string  `json:"reviewer_email" gorm:"size:100;not null;uniqueIndex:idx_ratings_seller_reviewer,priority:2"`
	ReviewerName   string  `json:"reviewer_name" gorm:"size:150"`
	ReviewerUserID *string `json:"reviewer_user_id,omitempty" gorm:"size:36;index"`

	Score      int    `json:"score" gorm:"not null"`
	ReviewText string `json:"review_text" gorm:"size:1000"`

	SellerWasDeleted       bool `json:"seller_was_deleted" gorm:"default:false"`
	ReviewerAccountDeleted bool `json:"reviewer_account_deleted" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *SellerRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RatingStats is the aggregate view over a seller's ratings.
type RatingStats struct {
	AverageRating    float64     `json:"average_rating"`
	TotalRatings     int64       `json:"total_ratings"`
	VerifiedReviews  int64       `json:"verified_reviews"`
	AnonymousReviews int64       `json:"anonymous_reviews"`
	Distribution     map[int]int `json:"distribution"`
}
