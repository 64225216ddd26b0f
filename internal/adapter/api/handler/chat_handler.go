package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

// ListConversations returns the caller's conversations with enough context
// to render an inbox: the other participant, the latest message, the unread
// count, and any listings mentioned in the thread.
func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	summaries, err := h.chatUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"conversations": summaries,
	})
}

// Updates serves the inbox polling loop; same payload as ListConversations
// plus the total unread count so clients can update a badge in one call.
func (h *ChatHandler) Updates(c echo.Context) error {
	userID := c.Get("uid").(string)
	ctx := c.Request().Context()

	summaries, err := h.chatUseCase.ListConversations(ctx, userID)
	if err != nil {
		return response.Error(c, err)
	}
	unread, err := h.chatUseCase.UnreadCount(ctx, userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"conversations": summaries,
		"unread_count":  unread,
	})
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.chatUseCase.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{
		"unread_count": count,
	})
}

// StartConversation gets or creates the single conversation with another
// user. The payload carries the conversation id either way; "created" tells
// the client whether it is new.
func (h *ChatHandler) StartConversation(c echo.Context) error {
	userID := c.Get("uid").(string)
	otherUserID := c.Param("userID")

	conversation, created, err := h.chatUseCase.StartConversation(c.Request().Context(), userID, otherUserID)
	if err != nil {
		return response.Error(c, err)
	}

	payload := map[string]interface{}{
		"conversation_id": conversation.ID,
		"created":         created,
	}
	if created {
		return response.Created(c, payload)
	}
	return response.Success(c, payload)
}

// StartFromListing opens (or reuses) a conversation with a listing's owner
// and tags the conversation with the listing for context.
func (h *ChatHandler) StartFromListing(c echo.Context) error {
	userID := c.Get("uid").(string)
	listingID := c.Param("listingID")

	conversation, created, err := h.chatUseCase.StartFromListing(c.Request().Context(), userID, listingID)
	if err != nil {
		return response.Error(c, err)
	}

	payload := map[string]interface{}{
		"conversation_id": conversation.ID,
		"created":         created,
	}
	if created {
		return response.Created(c, payload)
	}
	return response.Success(c, payload)
}

// GetConversation returns the full thread and marks the other side's
// messages read as a side effect of viewing.
func (h *ChatHandler) GetConversation(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	thread, err := h.chatUseCase.ViewConversation(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, thread)
}

type sendMessageRequest struct {
	Content   string `json:"content" validate:"required"`
	ListingID string `json:"listing_id,omitempty"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: conversationID,
		Content:        req.Content,
		ListingID:      req.ListingID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MessagesSince serves the in-thread polling loop: messages with an id
// greater than "after", excluding the caller's own. Fetched messages are
// marked read.
func (h *ChatHandler) MessagesSince(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	afterID, err := strconv.ParseUint(c.QueryParam("after"), 10, 64)
	if err != nil {
		return response.Error(c, errors.BadRequest("Query parameter 'after' must be a message id", err))
	}

	messages, err := h.chatUseCase.MessagesSince(c.Request().Context(), userID, conversationID, uint(afterID))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"messages": messages,
	})
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	updated, err := h.chatUseCase.MarkConversationRead(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{
		"marked_read": updated,
	})
}
