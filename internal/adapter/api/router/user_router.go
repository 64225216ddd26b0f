package router

import (
	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetProfile)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.PUT("/me/picture", userHandler.UpdateProfilePicture)
	users.DELETE("/me", userHandler.DeleteAccount)
}
