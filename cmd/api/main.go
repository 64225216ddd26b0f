package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"campusmarket/internal/adapter/api"
	"campusmarket/internal/adapter/api/handler"
	apimiddleware "campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/adapter/api/router"
	"campusmarket/internal/adapter/repository"
	"campusmarket/internal/infrastructure/auth"
	"campusmarket/internal/infrastructure/database"
	"campusmarket/internal/infrastructure/mail"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/internal/infrastructure/storage"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.Open(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	userRepo := repository.NewGormUserRepository(db)
	listingRepo := repository.NewGormListingRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	conversationRepo := repository.NewGormConversationRepository(db)
	ratingRepo := repository.NewGormRatingRepository(db)

	signupUseCase := usecase.NewSignupUseCase(userRepo, mailer, cfg.BaseURL, cfg.AllowedEmailDomain, cfg.VerifyTokenMinutes)
	authUseCase := usecase.NewAuthUseCase(userRepo, tokenManager)
	userUseCase := usecase.NewUserUseCase(userRepo, listingRepo, ratingRepo, storageClient)
	listingUseCase := usecase.NewListingUseCase(listingRepo, categoryRepo, userRepo)
	ratingUseCase := usecase.NewRatingUseCase(ratingRepo, userRepo)
	chatUseCase := usecase.NewChatUseCase(conversationRepo, userRepo, listingRepo, rateLimiter)

	handler.Setup(signupUseCase, authUseCase, userUseCase, listingUseCase, ratingUseCase, chatUseCase, rateLimiter, storageClient)
	handler.SetupHealthHandler(db)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(tokenManager)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
