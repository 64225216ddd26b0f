package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
	"campusmarket/pkg/utils"
)

type RatingHandler struct {
	ratingUseCase *usecase.RatingUseCase
}

func NewRatingHandler(ratingUseCase *usecase.RatingUseCase) *RatingHandler {
	return &RatingHandler{
		ratingUseCase: ratingUseCase,
	}
}

type submitRatingRequest struct {
	ReviewerEmail string `json:"reviewer_email" validate:"required,email"`
	ReviewerName  string `json:"reviewer_name" validate:"omitempty,max=150"`
	Score         int    `json:"score" validate:"required,min=1,max=5"`
	ReviewText    string `json:"review_text" validate:"omitempty,max=1000"`
}

// SubmitRating creates or updates the reviewer's rating for a seller. A
// repeat submission from the same email replaces the earlier one.
func (h *RatingHandler) SubmitRating(c echo.Context) error {
	var req submitRatingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	rating, created, err := h.ratingUseCase.SubmitRating(c.Request().Context(), usecase.SubmitRatingInput{
		SellerID:      c.Param("id"),
		ReviewerEmail: req.ReviewerEmail,
		ReviewerName:  req.ReviewerName,
		Score:         req.Score,
		ReviewText:    req.ReviewText,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, rating)
	}
	return response.Success(c, rating)
}

func (h *RatingHandler) ListRatings(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	ratings, total, err := h.ratingUseCase.ListRatings(c.Request().Context(), c.Param("id"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, ratings, total, pagination.Page, pagination.PageSize)
}

func (h *RatingHandler) GetStats(c echo.Context) error {
	stats, err := h.ratingUseCase.Stats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}
