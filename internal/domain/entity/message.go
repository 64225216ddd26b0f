package entity

import "time"

// Message state machine: {unread} --read by non-sender--> {read}. Terminal
// once read; ReadAt is set exactly once and never updated afterwards.
// Invariant: ReadAt is non-nil iff IsRead.
type Message struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	ConversationID string `json:"conversation_id" gorm:"size:36;index;not null"`
	SenderID       string `json:"sender_id" gorm:"size:36;index;not null"`
	Sender         *User  `json:"sender,omitempty" gorm:"foreignKey:SenderID"`

	Content string `json:"content" gorm:"not null"`

	// ListingID optionally tags the message with a listing for UI context.
	ListingID *string  `json:"listing_id,omitempty" gorm:"size:36;index"`
	Listing   *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`

	IsRead bool       `json:"is_read" gorm:"default:false;index"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
