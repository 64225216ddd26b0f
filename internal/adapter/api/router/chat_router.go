package router

import (
	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.GET("", chatHandler.ListConversations)
	chats.GET("/updates", chatHandler.Updates)
	chats.GET("/unread-count", chatHandler.UnreadCount)
	chats.POST("/start/:userID", chatHandler.StartConversation)
	chats.POST("/listing/:listingID", chatHandler.StartFromListing)
	chats.GET("/:id", chatHandler.GetConversation)
	chats.POST("/:id/messages", chatHandler.SendMessage)
	chats.GET("/:id/messages", chatHandler.MessagesSince)
	chats.PUT("/:id/read", chatHandler.MarkRead)
}
