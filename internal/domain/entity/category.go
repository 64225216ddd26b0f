package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ListingTypeProduct = "product"
	ListingTypeService = "service"
)

type Category struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Kind        string  `json:"kind" gorm:"size:10;not null;uniqueIndex:idx_categories_kind_name,priority:1;uniqueIndex:idx_categories_kind_slug,priority:1"`
	Name        string  `json:"name" gorm:"size:50;not null;uniqueIndex:idx_categories_kind_name,priority:2"`
	Slug        string  `json:"slug" gorm:"size:50;not null;uniqueIndex:idx_categories_kind_slug,priority:2"`
	Description string  `json:"description,omitempty" gorm:"size:250"`
	ParentID    *string `json:"parent_id,omitempty" gorm:"size:36"`
	IsActive    bool    `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
