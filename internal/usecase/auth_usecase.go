package usecase

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	tokenManager TokenManager
}

func NewAuthUseCase(userRepo repository.UserRepository, tokenManager TokenManager) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		tokenManager: tokenManager,
	}
}

type AuthResult struct {
	User  *entity.User
	Token string
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same generic error so existence is never revealed.
// An identity still pending email verification cannot log in.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	if user.Profile != nil && user.Profile.PendingEmailVerification {
		return nil, errors.Forbidden("Please verify your email before logging in. Check your inbox for the verification link.", nil)
	}

	token, err := uc.tokenManager.Generate(user.ID)
	if err != nil {
		logger.Error("token generation for user %s failed: %v", user.ID, err)
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	return user, nil
}
