package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	apperrors "campusmarket/pkg/errors"
)

type gormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) repository.ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(conv)
	if res.Error != nil {
		return nil, false, res.Error
	}

	created := res.RowsAffected > 0

	// Re-read either way so the caller always gets the surviving row, even
	// when a concurrent insert won the conflict.
	var out entity.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Listing").
		First(&out, "pair_key = ?", entity.PairKey(conv.UserAID, conv.UserBID)).Error; err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

func (r *gormConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := r.db.WithContext(ctx).Preload("Listing").First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Conversation", err)
		}
		return nil, err
	}
	return &conv, nil
}

func (r *gormConversationRepository) GetByIDForUser(ctx context.Context, id, userID string) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("id = ? AND (user_a_id = ? OR user_b_id = ?)", id, userID, userID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown id and not-a-participant are indistinguishable on
			// purpose.
			return nil, apperrors.NotFound("Conversation", err)
		}
		return nil, err
	}
	return &conv, nil
}

func (r *gormConversationRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	var convs []*entity.Conversation
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *gormConversationRepository) SetListing(ctx context.Context, conversationID, listingID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("id = ?", conversationID).
		Update("listing_id", listingID).Error
}

func (r *gormConversationRepository) Touch(ctx context.Context, conversationID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", at).Error
}

func (r *gormConversationRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *gormConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	var msgs []*entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Listing").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *gormConversationRepository) ListMessagesAfter(ctx context.Context, conversationID string, afterID uint, excludeSenderID string) ([]*entity.Message, error) {
	var msgs []*entity.Message
	q := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Listing").
		Where("conversation_id = ? AND sender_id <> ?", conversationID, excludeSenderID)
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	err := q.Order("created_at ASC, id ASC").Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *gormConversationRepository) LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *gormConversationRepository) MarkRead(ctx context.Context, conversationID, readerID string, readAt time.Time) (int64, error) {
	// The is_read = false predicate keeps ReadAt sticky: re-running this
	// never rewrites timestamps on already-read messages.
	res := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt})
	return res.RowsAffected, res.Error
}

func (r *gormConversationRepository) MarkMessagesRead(ctx context.Context, messageIDs []uint, readAt time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id IN ? AND is_read = ?", messageIDs, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt}).Error
}

func (r *gormConversationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.user_a_id = ? OR conversations.user_b_id = ?)", userID, userID).
		Where("messages.is_read = ? AND messages.sender_id <> ?", false, userID).
		Count(&n).Error
	return n, err
}

func (r *gormConversationRepository) UnreadCountByConversation(ctx context.Context, conversationID, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND is_read = ? AND sender_id <> ?", conversationID, false, userID).
		Count(&n).Error
	return n, err
}

func (r *gormConversationRepository) MentionedListings(ctx context.Context, conversationID string) ([]*entity.Listing, error) {
	var listings []*entity.Listing
	err := r.db.WithContext(ctx).
		Model(&entity.Listing{}).
		Distinct("listings.*").
		Joins("JOIN messages ON messages.listing_id = listings.id").
		Where("messages.conversation_id = ?", conversationID).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}
