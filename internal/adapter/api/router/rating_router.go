package router

import (
	"campusmarket/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

// SetupRatingRouter registers the rating routes. They are public: reviewers
// identify themselves by email and need no account.
func SetupRatingRouter(e *echo.Echo) {
	ratingHandler := handler.GetRatingHandler()

	e.GET("/v1/users/:id/ratings", ratingHandler.ListRatings)
	e.GET("/v1/users/:id/ratings/stats", ratingHandler.GetStats)
	e.POST("/v1/users/:id/ratings", ratingHandler.SubmitRating)
}
