package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	gormrepo "campusmarket/internal/adapter/repository"
	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func newChatUseCase(db *gorm.DB, limiter RateLimiter) *ChatUseCase {
	return NewChatUseCase(
		gormrepo.NewGormConversationRepository(db),
		gormrepo.NewGormUserRepository(db),
		gormrepo.NewGormListingRepository(db),
		limiter,
	)
}

func TestStartConversation_PairIsDirectionless(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)

	conv1, created, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// Same pair from the other side resolves to the same conversation.
	conv2, created, err := uc.StartConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv1.ID, conv2.ID)

	var count int64
	require.NoError(t, db.Model(&entity.Conversation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestStartConversation_RejectsSelf(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})

	alice := seedUser(t, db, "alice", false)

	_, _, err := uc.StartConversation(context.Background(), alice.ID, alice.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestStartConversation_RateLimited(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, denyLimiter{})

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)

	_, _, err := uc.StartConversation(context.Background(), alice.ID, bob.ID)
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestStartFromListing_LinksListingAndRejectsOwner(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	seller := seedUser(t, db, "seller", true)
	buyer := seedUser(t, db, "buyer", false)
	category := seedCategory(t, db, entity.ListingTypeProduct, "Books")
	listing := seedListing(t, db, seller, category, "Calculus textbook", "25.00")

	conv, created, err := uc.StartFromListing(ctx, buyer.ID, listing.ID)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, conv.ListingID)
	assert.Equal(t, listing.ID, *conv.ListingID)

	_, _, err = uc.StartFromListing(ctx, seller.ID, listing.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessage_RejectsBlankContent(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	conv, _, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, alice.ID, SendMessageInput{
		ConversationID: conv.ID,
		Content:        "   \n\t ",
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	var count int64
	require.NoError(t, db.Model(&entity.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSendMessage_NonParticipantGetsNotFound(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	eve := seedUser(t, db, "eve", false)
	conv, _, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, eve.ID, SendMessageInput{
		ConversationID: conv.ID,
		Content:        "hi",
	})
	// Outsiders cannot tell a foreign conversation from a missing one.
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestSendMessage_DropsInvalidListingReference(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	conv, _, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	msg, err := uc.SendMessage(ctx, alice.ID, SendMessageInput{
		ConversationID: conv.ID,
		Content:        "is this still available?",
		ListingID:      "no-such-listing",
	})
	require.NoError(t, err)
	assert.Nil(t, msg.ListingID)
}

func TestReadTracking_StickyReadAtAndUnreadCounts(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	conv, _, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	for _, text := range []string{"hey", "you there?"} {
		_, err := uc.SendMessage(ctx, alice.ID, SendMessageInput{ConversationID: conv.ID, Content: text})
		require.NoError(t, err)
	}

	unread, err := uc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	// The sender's own messages are never unread for the sender.
	unread, err = uc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	marked, err := uc.MarkConversationRead(ctx, bob.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	var first entity.Message
	require.NoError(t, db.Order("id ASC").First(&first, "conversation_id = ?", conv.ID).Error)
	require.NotNil(t, first.ReadAt)
	originalReadAt := *first.ReadAt

	// A second pass touches nothing: ReadAt is sticky.
	marked, err = uc.MarkConversationRead(ctx, bob.ID, conv.ID)
	require.NoError(t, err)
	assert.Zero(t, marked)

	require.NoError(t, db.Order("id ASC").First(&first, "conversation_id = ?", conv.ID).Error)
	assert.Equal(t, originalReadAt.UTC(), first.ReadAt.UTC())
}

func TestViewConversation_MarksOtherSideRead(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	conv, _, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, alice.ID, SendMessageInput{ConversationID: conv.ID, Content: "ping"})
	require.NoError(t, err)

	thread, err := uc.ViewConversation(ctx, bob.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, alice.ID, thread.OtherParticipant.ID)

	unread, err := uc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMessagesSince_PollsAndMarksFetchedRead(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	conv, _, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	first, err := uc.SendMessage(ctx, alice.ID, SendMessageInput{ConversationID: conv.ID, Content: "one"})
	require.NoError(t, err)
	second, err := uc.SendMessage(ctx, alice.ID, SendMessageInput{ConversationID: conv.ID, Content: "two"})
	require.NoError(t, err)

	// Bob polls past the first message and only sees the second.
	messages, err := uc.MessagesSince(ctx, bob.ID, conv.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, second.ID, messages[0].ID)

	// Alice polling never sees her own messages.
	messages, err = uc.MessagesSince(ctx, alice.ID, conv.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// The fetched message is now read; the unfetched one is not.
	var fetched, unfetched entity.Message
	require.NoError(t, db.First(&fetched, second.ID).Error)
	require.NoError(t, db.First(&unfetched, first.ID).Error)
	assert.True(t, fetched.IsRead)
	assert.False(t, unfetched.IsRead)
}

func TestListConversations_SummariesIncludeEmptyConversations(t *testing.T) {
	db := newTestDB(t)
	uc := newChatUseCase(db, allowAllLimiter{})
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	carol := seedUser(t, db, "carol", true)
	category := seedCategory(t, db, entity.ListingTypeService, "Tutoring")
	listing := seedListing(t, db, carol, category, "Physics tutoring", "15.00")

	// One conversation with traffic, one without.
	convBob, _, err := uc.StartConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	convCarol, _, err := uc.StartConversation(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, bob.ID, SendMessageInput{
		ConversationID: convBob.ID,
		Content:        "selling anything?",
		ListingID:      listing.ID,
	})
	require.NoError(t, err)

	summaries, err := uc.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := map[string]*ConversationSummary{}
	for _, s := range summaries {
		byID[s.Conversation.ID] = s
	}

	withTraffic := byID[convBob.ID]
	require.NotNil(t, withTraffic)
	assert.Equal(t, bob.ID, withTraffic.OtherParticipant.ID)
	require.NotNil(t, withTraffic.LatestMessage)
	assert.EqualValues(t, 1, withTraffic.UnreadCount)
	require.Len(t, withTraffic.MentionedListings, 1)
	assert.Equal(t, listing.ID, withTraffic.MentionedListings[0].ID)

	empty := byID[convCarol.ID]
	require.NotNil(t, empty)
	assert.Nil(t, empty.LatestMessage)
	assert.Zero(t, empty.UnreadCount)
	assert.Empty(t, empty.MentionedListings)
}
