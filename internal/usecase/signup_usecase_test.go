package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	gormrepo "campusmarket/internal/adapter/repository"
	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func newSignupUseCase(db *gorm.DB, mailer Mailer) *SignupUseCase {
	userRepo := gormrepo.NewGormUserRepository(db)
	return NewSignupUseCase(userRepo, mailer, "http://localhost:8080", "upr.edu", 60)
}

func validSignupInput() SignupInput {
	return SignupInput{
		Username:        "maria",
		FirstName:       "Maria",
		LastName:        "Rivera",
		Email:           "maria@upr.edu",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}
}

func TestBeginSignup_CreatesDormantAccountAndSendsEmail(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	uc := newSignupUseCase(db, mailer)
	ctx := context.Background()

	user, err := uc.BeginSignup(ctx, validSignupInput())
	require.NoError(t, err)
	assert.Equal(t, "maria@upr.edu", user.Email)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	assert.True(t, profile.PendingEmailVerification)
	require.NotNil(t, profile.EmailToken)
	assert.Len(t, *profile.EmailToken, 64)
	require.NotNil(t, profile.EmailTokenExpiresAt)
	assert.True(t, profile.EmailTokenExpiresAt.After(time.Now()))

	assert.Equal(t, "maria@upr.edu", mailer.lastTo())
}

func TestBeginSignup_RejectsBadInputWithFieldErrors(t *testing.T) {
	db := newTestDB(t)
	uc := newSignupUseCase(db, &fakeMailer{})
	ctx := context.Background()

	input := validSignupInput()
	input.Email = "maria@gmail.com"
	input.ConfirmPassword = "different"

	_, err := uc.BeginSignup(ctx, input)
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "confirm_password")

	// Nothing was written.
	var count int64
	require.NoError(t, db.Model(&entity.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBeginSignup_RejectsDuplicateEmailAndUsername(t *testing.T) {
	db := newTestDB(t)
	uc := newSignupUseCase(db, &fakeMailer{})
	ctx := context.Background()

	_, err := uc.BeginSignup(ctx, validSignupInput())
	require.NoError(t, err)

	_, err = uc.BeginSignup(ctx, validSignupInput())
	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "username")
}

func TestBeginSignup_SwallowsEmailFailure(t *testing.T) {
	db := newTestDB(t)
	uc := newSignupUseCase(db, failingMailer{})

	user, err := uc.BeginSignup(context.Background(), validSignupInput())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestConfirmToken_ActivatesAccount(t *testing.T) {
	db := newTestDB(t)
	uc := newSignupUseCase(db, &fakeMailer{})
	ctx := context.Background()

	user, err := uc.BeginSignup(ctx, validSignupInput())
	require.NoError(t, err)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	token := *profile.EmailToken

	confirmed, err := uc.ConfirmToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, confirmed.Email)

	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	assert.False(t, profile.PendingEmailVerification)
	assert.Nil(t, profile.EmailToken)
	assert.NotNil(t, profile.VerifiedAt)
}

func TestConfirmToken_ExpiredAndInvalid(t *testing.T) {
	db := newTestDB(t)
	uc := newSignupUseCase(db, &fakeMailer{})
	ctx := context.Background()

	user, err := uc.BeginSignup(ctx, validSignupInput())
	require.NoError(t, err)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	token := *profile.EmailToken

	_, err = uc.ConfirmToken(ctx, "no-such-token")
	assert.True(t, errors.Is(err, "INVALID_TOKEN"))

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&profile).Update("email_token_expires_at", past).Error)

	_, err = uc.ConfirmToken(ctx, token)
	assert.True(t, errors.Is(err, "EXPIRED_TOKEN"))

	// An expired token never activates the account.
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	assert.True(t, profile.PendingEmailVerification)
}

func TestActivate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	uc := newSignupUseCase(db, &fakeMailer{})
	ctx := context.Background()

	user, err := uc.BeginSignup(ctx, validSignupInput())
	require.NoError(t, err)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	token := *profile.EmailToken

	_, err = uc.ConfirmToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	firstVerifiedAt := *profile.VerifiedAt

	require.NoError(t, uc.Activate(ctx, &profile))

	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	assert.WithinDuration(t, firstVerifiedAt, *profile.VerifiedAt, time.Second)
}

func TestResend_IssuesFreshTokenAndInvalidatesOld(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	uc := newSignupUseCase(db, mailer)
	ctx := context.Background()

	user, err := uc.BeginSignup(ctx, validSignupInput())
	require.NoError(t, err)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	oldToken := *profile.EmailToken

	require.NoError(t, uc.Resend(ctx, user.Email))

	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	require.NotNil(t, profile.EmailToken)
	assert.NotEqual(t, oldToken, *profile.EmailToken)

	// The overwritten token is dead.
	_, status, err := uc.ResolveToken(ctx, oldToken)
	require.NoError(t, err)
	assert.Equal(t, TokenInvalid, status)

	assert.Len(t, mailer.sent, 2)
}

func TestResend_NeutralOnUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	uc := newSignupUseCase(db, mailer)

	err := uc.Resend(context.Background(), "nobody@upr.edu")
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestResend_IgnoresVerifiedAccounts(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	uc := newSignupUseCase(db, mailer)
	ctx := context.Background()

	user, err := uc.BeginSignup(ctx, validSignupInput())
	require.NoError(t, err)

	var profile entity.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	_, err = uc.ConfirmToken(ctx, *profile.EmailToken)
	require.NoError(t, err)

	mailer.sent = nil
	require.NoError(t, uc.Resend(ctx, user.Email))
	assert.Empty(t, mailer.sent)
}
