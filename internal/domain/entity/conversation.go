package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a pairwise relation between two users. PairKey is the
// canonicalized unordered pair and carries a unique index, so concurrent
// first contacts between the same two users collapse to one row.
type Conversation struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	PairKey string `json:"-" gorm:"uniqueIndex;size:80;not null"`

	UserAID string `json:"user_a_id" gorm:"size:36;index;not null"`
	UserBID string `json:"user_b_id" gorm:"size:36;index;not null"`
	UserA   *User  `json:"-" gorm:"foreignKey:UserAID"`
	UserB   *User  `json:"-" gorm:"foreignKey:UserBID"`

	// ListingID links the conversation to the listing that originated it,
	// when it was started from a listing page.
	ListingID *string  `json:"listing_id,omitempty" gorm:"size:36"`
	Listing   *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.PairKey == "" {
		c.PairKey = PairKey(c.UserAID, c.UserBID)
	}
	return nil
}

// PairKey canonicalizes an unordered user pair into a stable key.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

func NewConversation(a, b string) *Conversation {
	if b < a {
		a, b = b, a
	}
	return &Conversation{
		UserAID: a,
		UserBID: b,
		PairKey: a + ":" + b,
	}
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipantID returns the counterparty, or "" if userID is not a
// participant at all.
func (c *Conversation) OtherParticipantID(userID string) string {
	switch userID {
	case c.UserAID:
		return c.UserBID
	case c.UserBID:
		return c.UserAID
	default:
		return ""
	}
}
