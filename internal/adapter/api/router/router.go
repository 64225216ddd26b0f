package router

import (
	"campusmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware)
	SetupListingRouter(e, authMiddleware, adminMiddleware)
	SetupRatingRouter(e)
	SetupChatRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
