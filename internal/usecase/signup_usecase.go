package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

// TokenStatus is the outcome of resolving a verification token.
type TokenStatus string

const (
	TokenValid   TokenStatus = "valid"
	TokenExpired TokenStatus = "expired"
	TokenInvalid TokenStatus = "invalid"
)

type SignupUseCase struct {
	userRepo    repository.UserRepository
	mailer      Mailer
	baseURL     string
	emailDomain string
	tokenTTL    time.Duration
}

func NewSignupUseCase(
	userRepo repository.UserRepository,
	mailer Mailer,
	baseURL string,
	emailDomain string,
	tokenTTLMinutes int64,
) *SignupUseCase {
	return &SignupUseCase{
		userRepo:    userRepo,
		mailer:      mailer,
		baseURL:     baseURL,
		emailDomain: emailDomain,
		tokenTTL:    time.Duration(tokenTTLMinutes) * time.Minute,
	}
}

type SignupInput struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	IsSeller        bool
	ProvidesService bool
}

// BeginSignup validates the submission, creates a dormant identity with a
// fresh verification token, and emails the activation link. The identity and
// profile land in one transaction; the email is best effort after commit.
func (uc *SignupUseCase) BeginSignup(ctx context.Context, input SignupInput) (*entity.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	fields := map[string]string{}
	if input.Password != input.ConfirmPassword {
		fields["confirm_password"] = "Passwords do not match."
	}
	if len(input.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters."
	}
	if uc.emailDomain != "" && !strings.HasSuffix(email, "@"+uc.emailDomain) {
		fields["email"] = fmt.Sprintf("Use your @%s email.", uc.emailDomain)
	}
	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		fields["email"] = "Email already registered."
	}
	if _, err := uc.userRepo.GetByUsername(ctx, username); err == nil {
		fields["username"] = "Username already taken."
	}
	if len(fields) > 0 {
		return nil, errors.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	token, expires, err := uc.newEmailToken()
	if err != nil {
		return nil, errors.Internal("Failed to generate verification token", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}
	profile := &entity.Profile{
		PhoneNumber:              strings.TrimSpace(input.PhoneNumber),
		IsSeller:                 input.IsSeller,
		ProvidesService:          input.ProvidesService,
		PendingEmailVerification: true,
		EmailToken:               &token,
		EmailTokenExpiresAt:      &expires,
	}

	if err := uc.userRepo.Create(ctx, user, profile); err != nil {
		return nil, errors.Internal("Failed to create user record", err)
	}

	uc.sendVerificationEmail(user, token)

	return user, nil
}

// ResolveToken looks up the profile by exact token match where verification
// is still pending. The returned profile is non-nil only for TokenValid.
func (uc *SignupUseCase) ResolveToken(ctx context.Context, token string) (*entity.Profile, TokenStatus, error) {
	if token == "" {
		return nil, TokenInvalid, nil
	}
	profile, err := uc.userRepo.GetProfileByToken(ctx, token)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, TokenInvalid, nil
		}
		return nil, TokenInvalid, err
	}
	if profile.TokenExpired(time.Now()) {
		return nil, TokenExpired, nil
	}
	return profile, TokenValid, nil
}

// Activate flips the profile to verified. Idempotent: an already-verified
// profile is left as is and no error is returned.
func (uc *SignupUseCase) Activate(ctx context.Context, profile *entity.Profile) error {
	if !profile.PendingEmailVerification && profile.VerifiedAt != nil {
		return nil
	}
	profile.MarkVerified(time.Now())
	return uc.userRepo.UpdateProfile(ctx, profile)
}

// ConfirmToken is the second step of the two-step activation: the token is
// re-validated here because it may have expired between the confirmation
// page being shown and the user clicking through.
func (uc *SignupUseCase) ConfirmToken(ctx context.Context, token string) (*entity.User, error) {
	profile, status, err := uc.resolveForStatus(ctx, token)
	if err != nil {
		return nil, err
	}
	switch status {
	case TokenExpired:
		return nil, errors.ExpiredToken()
	case TokenInvalid:
		return nil, errors.InvalidToken()
	}

	if err := uc.Activate(ctx, profile); err != nil {
		return nil, errors.Internal("Failed to activate account", err)
	}
	return profile.User, nil
}

// Resend issues a fresh token/expiry pair for a pending signup and re-sends
// the verification email. The previous token is invalidated by overwrite.
// The response never reveals whether the email exists: unknown addresses
// return success too.
func (uc *SignupUseCase) Resend(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.Validation(map[string]string{"email": "email is required"})
	}

	profile, err := uc.userRepo.GetPendingProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			// Neutral outcome, same as success.
			return nil
		}
		return err
	}

	token, expires, err := uc.newEmailToken()
	if err != nil {
		return errors.Internal("Failed to generate verification token", err)
	}
	profile.EmailToken = &token
	profile.EmailTokenExpiresAt = &expires
	profile.PendingEmailVerification = true
	if err := uc.userRepo.UpdateProfile(ctx, profile); err != nil {
		return errors.Internal("Failed to refresh verification token", err)
	}

	uc.sendVerificationEmail(profile.User, token)
	return nil
}

func (uc *SignupUseCase) resolveForStatus(ctx context.Context, token string) (*entity.Profile, TokenStatus, error) {
	profile, status, err := uc.ResolveToken(ctx, token)
	if err != nil {
		return nil, status, errors.Internal("Failed to resolve verification token", err)
	}
	return profile, status, nil
}

// newEmailToken returns a 256-bit URL-safe hex token and its expiry.
func (uc *SignupUseCase) newEmailToken() (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(buf), time.Now().Add(uc.tokenTTL), nil
}

func (uc *SignupUseCase) sendVerificationEmail(user *entity.User, token string) {
	if uc.mailer == nil || user == nil {
		return
	}
	activateURL := fmt.Sprintf("%s/v1/auth/verify/%s", strings.TrimRight(uc.baseURL, "/"), token)
	subject := "Verify your Campus Marketplace email"
	body := fmt.Sprintf(
		"Hi %s,\n\nConfirm your email by opening the link below and pressing the button:\n%s\n\nThis link expires in %d minutes.",
		user.FirstName, activateURL, int(uc.tokenTTL.Minutes()),
	)
	// A failed send must not fail the signup; it is logged and swallowed.
	if err := uc.mailer.Send(user.Email, subject, body); err != nil {
		logger.Error("verification email to %s failed: %v", user.Email, err)
	}
}
