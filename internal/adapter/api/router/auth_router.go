package router

import (
	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	// Public routes
	e.POST("/v1/auth/signup", authHandler.Signup)
	e.GET("/v1/auth/verify/:token", authHandler.VerifyStatus)
	e.POST("/v1/auth/verify/:token", authHandler.VerifyConfirm)
	e.POST("/v1/auth/verify/resend", authHandler.ResendVerification)
	e.POST("/v1/auth/login", authHandler.Login)

	// Protected routes
	protected := e.Group("/v1/auth")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("/logout", authHandler.Logout)
}
