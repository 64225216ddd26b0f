package usecase

import (
	"context"
	"strings"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

type ChatUseCase struct {
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	listingRepo      repository.ListingRepository
	rateLimiter      RateLimiter
}

func NewChatUseCase(
	conversationRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	rateLimiter RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		listingRepo:      listingRepo,
		rateLimiter:      rateLimiter,
	}
}

type SendMessageInput struct {
	ConversationID string
	Content        string
	ListingID      string
}

type ListingRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ConversationSummary struct {
	Conversation      *entity.Conversation `json:"conversation"`
	OtherParticipant  *entity.User         `json:"other_participant"`
	LatestMessage     *entity.Message      `json:"latest_message,omitempty"`
	UnreadCount       int64                `json:"unread_count"`
	MentionedListings []ListingRef         `json:"mentioned_listings"`
}

type ConversationThread struct {
	Conversation     *entity.Conversation `json:"conversation"`
	OtherParticipant *entity.User         `json:"other_participant"`
	Messages         []*entity.Message    `json:"messages"`
}

// StartConversation gets or creates the single conversation for the
// unordered (userID, otherUserID) pair. Self-conversations are rejected
// here, before the get-or-create runs.
func (uc *ChatUseCase) StartConversation(ctx context.Context, userID, otherUserID string) (*entity.Conversation, bool, error) {
	if userID == otherUserID {
		return nil, false, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(userID, "start_conversation"); !allowed {
		logger.Warn("start_conversation rate limited for user %s, wait %v", userID, wait)
		return nil, false, errors.TooManyRequests("Too many new conversations. Please wait before starting another.")
	}

	if _, err := uc.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, false, errors.NotFound("User", err)
	}

	conv, created, err := uc.conversationRepo.GetOrCreate(ctx, entity.NewConversation(userID, otherUserID))
	if err != nil {
		return nil, false, errors.Internal("Failed to start conversation", err)
	}
	return conv, created, nil
}

// StartFromListing opens (or reuses) the conversation with a listing's
// owner and links the conversation to that listing.
func (uc *ChatUseCase) StartFromListing(ctx context.Context, userID, listingID string) (*entity.Conversation, bool, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, false, err
	}
	if listing.OwnerID == nil {
		return nil, false, errors.BadRequest("This listing has no seller", nil)
	}
	if *listing.OwnerID == userID {
		return nil, false, errors.BadRequest("You cannot message yourself about your own listing", nil)
	}

	conv, created, err := uc.StartConversation(ctx, userID, *listing.OwnerID)
	if err != nil {
		return nil, false, err
	}

	if err := uc.conversationRepo.SetListing(ctx, conv.ID, listing.ID); err != nil {
		logger.Warn("failed to link conversation %s to listing %s: %v", conv.ID, listing.ID, err)
	} else {
		conv.ListingID = &listing.ID
		conv.Listing = listing
	}
	return conv, created, nil
}

// SendMessage appends a message to a conversation the sender participates
// in. Blank content creates nothing. An invalid listing reference is
// dropped silently; the message still goes through.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if allowed, wait := uc.rateLimiter.Allow(senderID, "send_message"); !allowed {
		logger.Warn("send_message rate limited for user %s, wait %v", senderID, wait)
		return nil, errors.TooManyRequests("You are sending messages too quickly. Please slow down.")
	}

	conv, err := uc.conversationRepo.GetByIDForUser(ctx, input.ConversationID, senderID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.BadRequest("Message cannot be empty", nil)
	}

	message := &entity.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if input.ListingID != "" {
		if listing, err := uc.listingRepo.GetByID(ctx, input.ListingID); err == nil {
			message.ListingID = &listing.ID
		}
	}

	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, errors.Internal("Failed to send message", err)
	}

	if err := uc.conversationRepo.Touch(ctx, conv.ID, message.CreatedAt); err != nil {
		logger.Warn("failed to bump conversation %s activity: %v", conv.ID, err)
	}

	return message, nil
}

// ViewConversation returns the full thread and, as a side effect, marks
// every unread message from the other participant as read.
func (uc *ChatUseCase) ViewConversation(ctx context.Context, userID, conversationID string) (*ConversationThread, error) {
	conv, err := uc.conversationRepo.GetByIDForUser(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.conversationRepo.MarkRead(ctx, conv.ID, userID, time.Now()); err != nil {
		// Advisory state; the thread still renders.
		logger.Warn("failed to mark conversation %s read: %v", conv.ID, err)
	}

	messages, err := uc.conversationRepo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, errors.Internal("Failed to load messages", err)
	}

	// A deleted counterparty leaves OtherParticipant nil; the history is
	// still readable.
	other, err := uc.userRepo.GetByID(ctx, conv.OtherParticipantID(userID))
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, errors.Internal("Failed to load participant", err)
	}

	return &ConversationThread{
		Conversation:     conv,
		OtherParticipant: other,
		Messages:         messages,
	}, nil
}

// MessagesSince returns the other party's messages with ID greater than
// afterID and marks the returned batch as read.
func (uc *ChatUseCase) MessagesSince(ctx context.Context, userID, conversationID string, afterID uint) ([]*entity.Message, error) {
	conv, err := uc.conversationRepo.GetByIDForUser(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := uc.conversationRepo.ListMessagesAfter(ctx, conv.ID, afterID, userID)
	if err != nil {
		return nil, errors.Internal("Failed to load messages", err)
	}

	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		if !m.IsRead {
			ids = append(ids, m.ID)
		}
	}
	if err := uc.conversationRepo.MarkMessagesRead(ctx, ids, time.Now()); err != nil {
		logger.Warn("failed to mark fetched messages read in conversation %s: %v", conv.ID, err)
	}

	return messages, nil
}

// MarkConversationRead is idempotent: already-read messages keep their
// original ReadAt.
func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) (int64, error) {
	conv, err := uc.conversationRepo.GetByIDForUser(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	n, err := uc.conversationRepo.MarkRead(ctx, conv.ID, userID, time.Now())
	if err != nil {
		return 0, errors.Internal("Failed to mark conversation read", err)
	}
	return n, nil
}

// UnreadCount is derived fresh from message state on every call.
func (uc *ChatUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := uc.conversationRepo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return n, nil
}

// ListConversations returns every conversation the user participates in,
// including ones with no messages yet.
func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string) ([]*ConversationSummary, error) {
	convs, err := uc.conversationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list conversations", err)
	}

	summaries := make([]*ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		other, err := uc.userRepo.GetByID(ctx, conv.OtherParticipantID(userID))
		if err != nil {
			if !errors.Is(err, "NOT_FOUND") {
				return nil, errors.Internal("Failed to load participant", err)
			}
			// Counterparty deleted; the conversation still lists so the
			// survivor can reach the history.
			other = nil
		}

		latest, err := uc.conversationRepo.LatestMessage(ctx, conv.ID)
		if err != nil {
			return nil, errors.Internal("Failed to load latest message", err)
		}

		unread, err := uc.conversationRepo.UnreadCountByConversation(ctx, conv.ID, userID)
		if err != nil {
			return nil, errors.Internal("Failed to count unread messages", err)
		}

		mentioned, err := uc.conversationRepo.MentionedListings(ctx, conv.ID)
		if err != nil {
			return nil, errors.Internal("Failed to load mentioned listings", err)
		}
		refs := make([]ListingRef, 0, len(mentioned))
		for _, l := range mentioned {
			refs = append(refs, ListingRef{ID: l.ID, Name: l.Name, Type: l.Type})
		}

		summaries = append(summaries, &ConversationSummary{
			Conversation:      conv,
			OtherParticipant:  other,
			LatestMessage:     latest,
			UnreadCount:       unread,
			MentionedListings: refs,
		})
	}
	return summaries, nil
}
