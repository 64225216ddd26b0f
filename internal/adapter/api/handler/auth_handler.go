package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
)

type AuthHandler struct {
	signupUseCase *usecase.SignupUseCase
	authUseCase   *usecase.AuthUseCase
	rateLimiter   usecase.RateLimiter
}

func NewAuthHandler(signupUseCase *usecase.SignupUseCase, authUseCase *usecase.AuthUseCase, rateLimiter usecase.RateLimiter) *AuthHandler {
	return &AuthHandler{
		signupUseCase: signupUseCase,
		authUseCase:   authUseCase,
		rateLimiter:   rateLimiter,
	}
}

type signupRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=30"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	IsSeller        bool   `json:"is_seller"`
	ProvidesService bool   `json:"provides_service"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Signup creates a dormant account and sends the verification email. The
// account cannot log in until the emailed token is confirmed.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.signupUseCase.BeginSignup(c.Request().Context(), usecase.SignupInput{
		Username:        req.Username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		IsSeller:        req.IsSeller,
		ProvidesService: req.ProvidesService,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"message": "Account created. Check your email to verify your address.",
		"user": userResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	})
}

// VerifyStatus is the first step of the two-step activation: it reports
// whether the token is usable without consuming it, so the client can show
// a confirmation page.
func (h *AuthHandler) VerifyStatus(c echo.Context) error {
	token := c.Param("token")

	profile, status, err := h.signupUseCase.ResolveToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to resolve verification token", err))
	}

	switch status {
	case usecase.TokenExpired:
		return response.Error(c, errors.ExpiredToken())
	case usecase.TokenInvalid:
		return response.Error(c, errors.InvalidToken())
	}

	data := map[string]interface{}{"status": string(status)}
	if profile != nil && profile.User != nil {
		data["email"] = profile.User.Email
	}
	return response.Success(c, data)
}

// VerifyConfirm is the second step: it re-validates the token and activates
// the account. Re-validation matters because the token can expire between
// the two steps.
func (h *AuthHandler) VerifyConfirm(c echo.Context) error {
	token := c.Param("token")

	user, err := h.signupUseCase.ConfirmToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Email verified. You can now log in.",
		"email":   user.Email,
	})
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendVerification always answers with the same neutral message so the
// endpoint cannot be used to probe which addresses have accounts.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req resendRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if allowed, _ := h.rateLimiter.Allow(c.RealIP(), "resend_verification"); !allowed {
		return response.Error(c, errors.TooManyRequests("Too many resend attempts. Try again later."))
	}

	if err := h.signupUseCase.Resend(c.Request().Context(), req.Email); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "If a pending account exists for that address, a new verification email has been sent.",
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, loginResponse{
		Token: result.Token,
		User: userResponse{
			ID:        result.User.ID,
			Username:  result.User.Username,
			Email:     result.User.Email,
			FirstName: result.User.FirstName,
			LastName:  result.User.LastName,
		},
	})
}

// Logout exists for session symmetry; tokens are stateless, so the client
// discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return response.Success(c, map[string]string{
		"message": "Successfully logged out",
	})
}
