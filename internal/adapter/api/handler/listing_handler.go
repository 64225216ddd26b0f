package handler

import (
	"mime/multipart"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/response"
	"campusmarket/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
	imageStorage   usecase.ImageStorage
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase, imageStorage usecase.ImageStorage) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
		imageStorage:   imageStorage,
	}
}

// ListListings serves both the home feed and filtered browsing: with no
// query parameters it returns the newest listings per type plus the
// categories; with filters it returns a paginated list.
func (h *ListingHandler) ListListings(c echo.Context) error {
	listingType := c.QueryParam("type")
	categoryID := c.QueryParam("category_id")
	ownerID := c.QueryParam("owner_id")

	if listingType == "" && categoryID == "" && ownerID == "" && c.QueryParam("page") == "" {
		feed, err := h.listingUseCase.Feed(c.Request().Context())
		if err != nil {
			return response.Error(c, err)
		}
		return response.Success(c, feed)
	}

	pagination := utils.GetPaginationParams(c)

	listings, total, err := h.listingUseCase.List(c.Request().Context(), repository.ListingFilter{
		Type:       listingType,
		CategoryID: categoryID,
		OwnerID:    ownerID,
	}, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, total, pagination.Page, pagination.PageSize)
}

// SearchListings does a substring search over names and descriptions of
// both listing types.
func (h *ListingHandler) SearchListings(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	listings, total, err := h.listingUseCase.Search(c.Request().Context(), c.QueryParam("q"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, total, pagination.Page, pagination.PageSize)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	listing, err := h.listingUseCase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

// CreateListing accepts a multipart form: scalar fields plus up to five
// "images" files. The image cap is enforced before anything is uploaded so
// an oversized batch leaves no orphaned files.
func (h *ListingHandler) CreateListing(c echo.Context) error {
	userID := c.Get("uid").(string)
	ctx := c.Request().Context()

	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil {
		return response.Error(c, errors.Validation(map[string]string{"price": "price must be a number"}))
	}

	discountPercent := decimal.Zero
	if raw := c.FormValue("discount_percent"); raw != "" {
		discountPercent, err = decimal.NewFromString(raw)
		if err != nil {
			return response.Error(c, errors.Validation(map[string]string{"discount": "discount must be a number"}))
		}
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}
	if len(files) > entity.MaxListingImages {
		return response.Error(c, errors.Validation(map[string]string{
			"images": "you can upload a maximum of 5 images",
		}))
	}

	imagePaths := make([]string, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			h.cleanupImages(c, imagePaths)
			return response.Error(c, errors.BadRequest("Failed to read uploaded image", err))
		}
		url, err := h.imageStorage.UploadImage(ctx, src, fh.Header.Get("Content-Type"), "listings")
		src.Close()
		if err != nil {
			h.cleanupImages(c, imagePaths)
			return response.Error(c, errors.BadRequest("Failed to upload image", err))
		}
		imagePaths = append(imagePaths, url)
	}

	listing, err := h.listingUseCase.CreateListing(ctx, userID, usecase.CreateListingInput{
		Type:            c.FormValue("type"),
		Name:            c.FormValue("name"),
		Description:     c.FormValue("description"),
		Price:           price,
		DiscountPercent: discountPercent,
		CategoryID:      c.FormValue("category_id"),
		ImagePaths:      imagePaths,
	})
	if err != nil {
		h.cleanupImages(c, imagePaths)
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

// cleanupImages removes already-uploaded files after a failed creation.
func (h *ListingHandler) cleanupImages(c echo.Context, paths []string) {
	for _, path := range paths {
		if err := h.imageStorage.DeleteImage(c.Request().Context(), path); err != nil {
			logger.Warn("Failed to clean up uploaded image %s: %v", path, err)
		}
	}
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.listingUseCase.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Listing deleted",
	})
}

func (h *ListingHandler) ListCategories(c echo.Context) error {
	categories, err := h.listingUseCase.ListCategories(c.Request().Context(), c.QueryParam("kind"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"categories": categories,
	})
}

type createCategoryRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=product service"`
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=250"`
}

func (h *ListingHandler) CreateCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	category, err := h.listingUseCase.CreateCategory(c.Request().Context(), usecase.CreateCategoryInput{
		Kind:        req.Kind,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, category)
}
