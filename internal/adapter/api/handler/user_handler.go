package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

type updateProfileRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=50"`
	LastName        *string `json:"last_name" validate:"omitempty,max=50"`
	PhoneNumber     *string `json:"phone_number" validate:"omitempty,max=20"`
	Bio             *string `json:"bio" validate:"omitempty,max=250"`
	IsSeller        *bool   `json:"is_seller"`
	ProvidesService *bool   `json:"provides_service"`
}

// UpdateProfile applies a partial update; omitted fields keep their value.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Bio:             req.Bio,
		IsSeller:        req.IsSeller,
		ProvidesService: req.ProvidesService,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// UpdateProfilePicture takes a multipart form with a single "picture" file.
func (h *UserHandler) UpdateProfilePicture(c echo.Context) error {
	userID := c.Get("uid").(string)

	fh, err := c.FormFile("picture")
	if err != nil {
		return response.Error(c, errors.BadRequest("A 'picture' file is required", err))
	}
	src, err := fh.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read uploaded picture", err))
	}
	defer src.Close()

	user, err := h.userUseCase.UpdateProfilePicture(c.Request().Context(), userID, src, fh.Header.Get("Content-Type"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// DeleteAccount removes the caller's account. Ratings involving the account
// are tombstoned and listings are detached, not deleted.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.userUseCase.DeleteAccount(c.Request().Context(), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Account deleted",
	})
}
