package router

import (
	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	listingHandler := handler.GetListingHandler()

	// Browsing is public
	e.GET("/v1/listings", listingHandler.ListListings)
	e.GET("/v1/listings/search", listingHandler.SearchListings)
	e.GET("/v1/listings/:id", listingHandler.GetListing)
	e.GET("/v1/categories", listingHandler.ListCategories)

	// Publishing requires an account
	listings := e.Group("/v1/listings")
	listings.Use(authMiddleware.Authenticate)
	listings.POST("", listingHandler.CreateListing)
	listings.DELETE("/:id", listingHandler.DeleteListing)

	// Category management is admin-only
	categories := e.Group("/v1/categories")
	categories.Use(authMiddleware.Authenticate)
	categories.Use(adminMiddleware.AdminOnly)
	categories.POST("", listingHandler.CreateCategory)
}
