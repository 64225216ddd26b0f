package handler

import (
	"campusmarket/internal/usecase"
)

var (
	authHandler    *AuthHandler
	userHandler    *UserHandler
	listingHandler *ListingHandler
	ratingHandler  *RatingHandler
	chatHandler    *ChatHandler
)

func Setup(
	signupUseCase *usecase.SignupUseCase,
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	listingUseCase *usecase.ListingUseCase,
	ratingUseCase *usecase.RatingUseCase,
	chatUseCase *usecase.ChatUseCase,
	rateLimiter usecase.RateLimiter,
	imageStorage usecase.ImageStorage,
) {
	authHandler = NewAuthHandler(signupUseCase, authUseCase, rateLimiter)
	userHandler = NewUserHandler(userUseCase)
	listingHandler = NewListingHandler(listingUseCase, imageStorage)
	ratingHandler = NewRatingHandler(ratingUseCase)
	chatHandler = NewChatHandler(chatUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetRatingHandler() *RatingHandler {
	return ratingHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}
