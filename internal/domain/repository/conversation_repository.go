package repository

import (
	"context"
	"time"

	"campusmarket/internal/domain/entity"
)

type ConversationRepository interface {
	// GetOrCreate inserts conv under the pair-key unique constraint and
	// returns the surviving row. created reports whether this call inserted
	// it. Safe against concurrent first contacts for the same pair.
	GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// GetByIDForUser returns not-found both for unknown conversations and
	// for conversations the user is not part of; callers must not be able
	// to distinguish the two.
	GetByIDForUser(ctx context.Context, id, userID string) (*entity.Conversation, error)
	ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error)
	SetListing(ctx context.Context, conversationID, listingID string) error
	Touch(ctx context.Context, conversationID string, at time.Time) error

	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error)
	// ListMessagesAfter returns the other party's messages with ID greater
	// than afterID, in creation order. afterID zero means from the start.
	ListMessagesAfter(ctx context.Context, conversationID string, afterID uint, excludeSenderID string) ([]*entity.Message, error)
	LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error)

	// MarkRead flips unread messages not sent by readerID to read with
	// readAt. Already-read messages keep their original ReadAt.
	MarkRead(ctx context.Context, conversationID, readerID string, readAt time.Time) (int64, error)
	MarkMessagesRead(ctx context.Context, messageIDs []uint, readAt time.Time) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
	UnreadCountByConversation(ctx context.Context, conversationID, userID string) (int64, error)

	// MentionedListings returns the distinct listings referenced by the
	// conversation's messages.
	MentionedListings(ctx context.Context, conversationID string) ([]*entity.Listing, error)
}
