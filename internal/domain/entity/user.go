package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	Username     string `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string `json:"-" gorm:"size:128;not null"`
	FirstName    string `json:"first_name" gorm:"size:50"`
	LastName     string `json:"last_name" gorm:"size:100"`
	IsAdmin      bool   `json:"is_admin" gorm:"default:false"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
