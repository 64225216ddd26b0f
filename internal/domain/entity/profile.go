package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile carries the marketplace-facing half of an identity: seller and
// service-provider flags plus the email-verification state. A user whose
// profile still has PendingEmailVerification set must not be allowed to
// log in.
type Profile struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	UserID string `json:"user_id" gorm:"uniqueIndex;size:36;not null"`
	User   *User  `json:"-" gorm:"foreignKey:UserID"`

	PhoneNumber     string `json:"phone_number,omitempty" gorm:"size:20"`
	Bio             string `json:"bio,omitempty" gorm:"size:250"`
	PicturePath     string `json:"picture_path,omitempty" gorm:"size:255"`
	IsSeller        bool   `json:"is_seller" gorm:"default:false"`
	ProvidesService bool   `json:"provides_service" gorm:"default:false"`

	PendingEmailVerification bool       `json:"pending_email_verification" gorm:"default:false"`
	EmailToken               *string    `json:"-" gorm:"uniqueIndex;size:64"`
	EmailTokenExpiresAt      *time.Time `json:"-"`
	VerifiedAt               *time.Time `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Profile) TokenExpired(now time.Time) bool {
	return p.EmailTokenExpiresAt != nil && p.EmailTokenExpiresAt.Before(now)
}

// MarkVerified clears the token pair and records the verification time.
// Calling it on an already-verified profile is a no-op.
func (p *Profile) MarkVerified(now time.Time) {
	if !p.PendingEmailVerification && p.VerifiedAt != nil {
		return
	}
	p.PendingEmailVerification = false
	p.EmailToken = nil
	p.EmailTokenExpiresAt = nil
	if p.VerifiedAt == nil {
		t := now
		p.VerifiedAt = &t
	}
}
