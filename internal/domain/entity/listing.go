package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxListingPrice is the inclusive price ceiling (NUMERIC(7,2)).
var MaxListingPrice = decimal.RequireFromString("99999.99")

// MaxListingImages caps the image batch per listing; exceeding it rejects
// the whole creation with no partial rows.
const MaxListingImages = 5

type ListingImage struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	ListingID    string `json:"listing_id" gorm:"size:36;index;not null"`
	Path         string `json:"path" gorm:"size:255;not null"`
	DisplayOrder int    `json:"display_order"`
}

func (i *ListingImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type Listing struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	Type        string `json:"type" gorm:"size:10;not null;index"`
	Name        string `json:"name" gorm:"size:50;not null"`
	Description string `json:"description" gorm:"size:250"`

	// DiscountAmount is an absolute amount derived once at creation time
	// from the submitted percentage. It is never recomputed when the base
	// price changes.
	Price          decimal.Decimal `json:"price" gorm:"type:numeric(7,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(7,2);not null"`

	CategoryID string    `json:"category_id" gorm:"size:36;not null;index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`

	// OwnerID is nullable: listings survive owner deletion.
	OwnerID *string `json:"owner_id,omitempty" gorm:"size:36;index"`
	Owner   *User   `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`

	// ImagePath mirrors the first image for legacy single-image readers.
	ImagePath string         `json:"image_path,omitempty" gorm:"size:255"`
	Images    []ListingImage `json:"images,omitempty" gorm:"foreignKey:ListingID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (l *Listing) FinalPrice() decimal.Decimal {
	return l.Price.Sub(l.DiscountAmount)
}
