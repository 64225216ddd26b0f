package usecase

import (
	"context"
	"io"
	"time"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type TokenManager interface {
	Generate(userID string) (string, error)
	Verify(token string) (string, error)
}

type ImageStorage interface {
	UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	DeleteImage(ctx context.Context, fileURL string) error
}

type RateLimiter interface {
	Allow(callerID, action string) (bool, time.Duration)
}
