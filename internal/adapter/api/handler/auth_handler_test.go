package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"campusmarket/internal/adapter/api"
	apimiddleware "campusmarket/internal/adapter/api/middleware"
	gormrepo "campusmarket/internal/adapter/repository"
	"campusmarket/internal/infrastructure/auth"
	"campusmarket/internal/infrastructure/database"
	"campusmarket/internal/usecase"
)

type captureMailer struct {
	bodies []string
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.bodies = append(m.bodies, body)
	return nil
}

// lastToken pulls the verification token out of the most recent email.
func (m *captureMailer) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.bodies)
	body := m.bodies[len(m.bodies)-1]
	idx := strings.Index(body, "/v1/auth/verify/")
	require.GreaterOrEqual(t, idx, 0)
	token := body[idx+len("/v1/auth/verify/"):]
	if end := strings.IndexAny(token, " \n"); end >= 0 {
		token = token[:end]
	}
	return token
}

type openLimiter struct{}

func (openLimiter) Allow(callerID, action string) (bool, time.Duration) { return true, 0 }

type closedLimiter struct{}

func (closedLimiter) Allow(callerID, action string) (bool, time.Duration) {
	return false, 5 * time.Minute
}

type authTestEnv struct {
	e      *echo.Echo
	mailer *captureMailer
}

func newAuthTestEnv(t *testing.T, limiter usecase.RateLimiter) *authTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := gormrepo.NewGormUserRepository(db)
	mailer := &captureMailer{}
	tokenManager := auth.NewTokenManager("test-secret", 3600)

	signupUC := usecase.NewSignupUseCase(userRepo, mailer, "http://localhost:8080", "upr.edu", 60)
	authUC := usecase.NewAuthUseCase(userRepo, tokenManager)

	h := NewAuthHandler(signupUC, authUC, limiter)
	authMiddleware := apimiddleware.NewAuthMiddleware(tokenManager)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.POST("/v1/auth/signup", h.Signup)
	e.GET("/v1/auth/verify/:token", h.VerifyStatus)
	e.POST("/v1/auth/verify/:token", h.VerifyConfirm)
	e.POST("/v1/auth/verify/resend", h.ResendVerification)
	e.POST("/v1/auth/login", h.Login)
	e.GET("/v1/users/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"uid": c.Get("uid").(string)})
	}, authMiddleware.Authenticate)

	return &authTestEnv{e: e, mailer: mailer}
}

func (env *authTestEnv) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

const signupBody = `{
	"username": "maria",
	"first_name": "Maria",
	"last_name": "Rivera",
	"email": "maria@upr.edu",
	"password": "correct-horse",
	"confirm_password": "correct-horse"
}`

func TestSignupVerifyLoginFlow(t *testing.T) {
	env := newAuthTestEnv(t, openLimiter{})

	// Signup
	rec := env.do(http.MethodPost, "/v1/auth/signup", signupBody, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Login before verification is refused.
	login := `{"email": "maria@upr.edu", "password": "correct-horse"}`
	rec = env.do(http.MethodPost, "/v1/auth/login", login, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The confirmation page resolves the token without consuming it.
	token := env.mailer.lastToken(t)
	rec = env.do(http.MethodGet, "/v1/auth/verify/"+token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"valid"`)

	// Confirm. Activation clears the token, so a second click reads as an
	// unknown link rather than re-activating.
	rec = env.do(http.MethodPost, "/v1/auth/verify/"+token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodPost, "/v1/auth/verify/"+token, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Login now works and the token opens protected routes.
	rec = env.do(http.MethodPost, "/v1/auth/login", login, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)

	rec = env.do(http.MethodGet, "/v1/users/me", "", envelope.Data.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), envelope.Data.User.ID)
}

func TestSignup_FieldErrorsInEnvelope(t *testing.T) {
	env := newAuthTestEnv(t, openLimiter{})

	body := `{
		"username": "maria",
		"first_name": "Maria",
		"last_name": "Rivera",
		"email": "maria@gmail.com",
		"password": "correct-horse",
		"confirm_password": "wrong-horse"
	}`
	rec := env.do(http.MethodPost, "/v1/auth/signup", body, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), `"code":"VALIDATION_ERROR"`)
	assert.Contains(t, rec.Body.String(), "email")
	assert.Contains(t, rec.Body.String(), "confirm_password")
}

func TestVerify_UnknownTokenIs404(t *testing.T) {
	env := newAuthTestEnv(t, openLimiter{})

	rec := env.do(http.MethodGet, "/v1/auth/verify/bogus", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestResend_NeutralAndRateLimited(t *testing.T) {
	env := newAuthTestEnv(t, openLimiter{})

	// Unknown email still reads as success.
	rec := env.do(http.MethodPost, "/v1/auth/verify/resend", `{"email": "ghost@upr.edu"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	limited := newAuthTestEnv(t, closedLimiter{})
	rec = limited.do(http.MethodPost, "/v1/auth/verify/resend", `{"email": "ghost@upr.edu"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestProtectedRoute_RejectsBadTokens(t *testing.T) {
	env := newAuthTestEnv(t, openLimiter{})

	rec := env.do(http.MethodGet, "/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/v1/users/me", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
