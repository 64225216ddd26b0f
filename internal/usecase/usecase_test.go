package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/infrastructure/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DB keeps all pooled connections on the same
	// in-memory database while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) lastTo() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].To
}

type failingMailer struct{}

func (failingMailer) Send(to, subject, body string) error {
	return fmt.Errorf("smtp unavailable")
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(callerID, action string) (bool, time.Duration) {
	return true, 0
}

type denyLimiter struct{}

func (denyLimiter) Allow(callerID, action string) (bool, time.Duration) {
	return false, time.Minute
}

type fakeImageStorage struct {
	uploads int
	deleted []string
}

func (s *fakeImageStorage) UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error) {
	s.uploads++
	return fmt.Sprintf("https://img.test/%s/%d", folder, s.uploads), nil
}

func (s *fakeImageStorage) DeleteImage(ctx context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, username string, isSeller bool) *entity.User {
	t.Helper()

	now := time.Now()
	user := &entity.User{
		Username:     username,
		Email:        username + "@upr.edu",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     username,
	}
	require.NoError(t, db.Create(user).Error)

	profile := &entity.Profile{
		UserID:     user.ID,
		IsSeller:   isSeller,
		VerifiedAt: &now,
	}
	require.NoError(t, db.Create(profile).Error)

	user.Profile = profile
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, kind, name string) *entity.Category {
	t.Helper()

	category := &entity.Category{
		Kind:     kind,
		Name:     name,
		Slug:     Slugify(name),
		IsActive: true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedListing(t *testing.T, db *gorm.DB, owner *entity.User, category *entity.Category, name, price string) *entity.Listing {
	t.Helper()

	listing := &entity.Listing{
		Type:           category.Kind,
		Name:           name,
		Price:          decimal.RequireFromString(price),
		DiscountAmount: decimal.Zero,
		CategoryID:     category.ID,
		OwnerID:        &owner.ID,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}
