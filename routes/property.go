package routes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"homestead-server/models"
	"homestead-server/storage"
	"homestead-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/datatypes"
)

type CreateListingInput struct {
	Title            string   `json:"title" validate:"required,max=256"`
	Description      string   `json:"description"`
	ListingType      string   `json:"listingType" validate:"required,oneof=SELL RENT"`
	RentDurationType string   `json:"rentDurationType" validate:"omitempty,oneof=MONTHLY YEARLY SIX_MONTHS DAILY WEEKLY HOURLY FLEXIBLE"`
	AddressLine1     string   `json:"addressLine1"`
	AddressLine2     string   `json:"addressLine2"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	Zip              string   `json:"zip"`
	Country          string   `json:"country"`
	Lat              float32  `json:"lat"`
	Lng              float32  `json:"lng"`
	Price            float64  `json:"price" validate:"required,min=0"`
	Currency         string   `json:"currency"`
	CheckinDate      *string  `json:"checkinDate"`
	CheckoutDate     *string  `json:"checkoutDate"`
	AdultCount       int      `json:"adultCount" validate:"min=0"`
	ChildrenCount    int      `json:"childrenCount" validate:"min=0"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        float32  `json:"bathrooms"`
	Amenities        []int    `json:"amenities"`
	Categories       []int    `json:"categories"`
	Images           []string `json:"images"` // base64 payloads
}

// slugify builds the URL slug the public client fetches properties by.
func slugify(title string, id uint) string {
	slug := strings.ToLower(title)
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == ' ' || r == '-' || r == '_' {
			return '-'
		}
		return -1
	}, slug)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return fmt.Sprintf("%s-%d", slug, id)
}

func parseDateField(v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil
	}
	return &d
}

func insertImages(images []string) []string {
	urls := []string{}
	for i, img := range images {
		publicID := fmt.Sprintf("property_%d_%d", time.Now().UnixNano(), i)
		if url := storage.UploadBase64Image(img, publicID); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

func CreateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Ensure arrays are never null
	amenities := input.Amenities
	if amenities == nil {
		amenities = []int{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	categories := input.Categories
	if categories == nil {
		categories = []int{}
	}
	categoriesJSON, _ := json.Marshal(categories)

	imagesArr := insertImages(input.Images)
	imagesJSON, _ := json.Marshal(imagesArr)

	property := models.Property{
		HostID:           claims.ID,
		Title:            input.Title,
		Description:      input.Description,
		ListingType:      models.ListingType(input.ListingType),
		RentDurationType: models.RentDurationType(input.RentDurationType),
		PublishStatus:    models.PublishStatusDraft,
		AddressLine1:     input.AddressLine1,
		AddressLine2:     input.AddressLine2,
		City:             input.City,
		State:            input.State,
		Zip:              input.Zip,
		Country:          input.Country,
		Lat:              input.Lat,
		Lng:              input.Lng,
		Price:            input.Price,
		Currency:         input.Currency,
		CheckinDate:      parseDateField(input.CheckinDate),
		CheckoutDate:     parseDateField(input.CheckoutDate),
		AdultCount:       input.AdultCount,
		ChildrenCount:    input.ChildrenCount,
		Bedrooms:         input.Bedrooms,
		Bathrooms:        input.Bathrooms,
		Amenities:        datatypes.JSON(amenitiesJSON),
		Categories:       datatypes.JSON(categoriesJSON),
		Images:           string(imagesJSON),
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Slug needs the generated id.
	property.Slug = slugify(property.Title, property.ID)
	if err := storage.DB.Model(&property).Update("slug", property.Slug).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&property)
}

// GetPropertyBySlug serves the immutable property snapshot the booking flow
// reads once per session. Off-market listings still return 200; the gate
// belongs to the availability and booking endpoints.
func GetPropertyBySlug(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var property models.Property
	if err := storage.DB.Preload("Host").Where("slug = ?", slug).First(&property).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&property)
}

func GetPropertiesByUserID(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var properties []models.Property
	if err := storage.DB.Where("host_id = ?", id).Order("created_at DESC").Find(&properties).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", err.Error(), ctx)
		return
	}

	ctx.JSON(properties)
}

type UpdateListingInput struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	RentDurationType *string  `json:"rentDurationType" validate:"omitempty,oneof=MONTHLY YEARLY SIX_MONTHS DAILY WEEKLY HOURLY FLEXIBLE"`
	Price            *float64 `json:"price" validate:"omitempty,min=0"`
	CheckinDate      *string  `json:"checkinDate"`
	CheckoutDate     *string  `json:"checkoutDate"`
	AdultCount       *int     `json:"adultCount" validate:"omitempty,min=0"`
	ChildrenCount    *int     `json:"childrenCount" validate:"omitempty,min=0"`
	PublishStatus    *string  `json:"publishStatus" validate:"omitempty,oneof=DRAFT IN_PROGRESS PUBLISHED SOLD RENTED"`
	Images           []string `json:"images"`
}

func UpdateProperty(ctx iris.Context) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if property.HostID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Forbidden",
			"You don't have permission to update this property.", ctx)
		return
	}

	var input UpdateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != nil {
		property.Title = *input.Title
	}
	if input.Description != nil {
		property.Description = *input.Description
	}
	if input.RentDurationType != nil {
		property.RentDurationType = models.RentDurationType(*input.RentDurationType)
	}
	if input.Price != nil {
		property.Price = *input.Price
	}
	if input.CheckinDate != nil {
		property.CheckinDate = parseDateField(input.CheckinDate)
	}
	if input.CheckoutDate != nil {
		property.CheckoutDate = parseDateField(input.CheckoutDate)
	}
	if input.AdultCount != nil {
		property.AdultCount = *input.AdultCount
	}
	if input.ChildrenCount != nil {
		property.ChildrenCount = *input.ChildrenCount
	}
	if input.PublishStatus != nil {
		property.PublishStatus = models.PublishStatus(*input.PublishStatus)
	}
	if input.Images != nil {
		imagesArr := insertImages(input.Images)
		imagesJSON, _ := json.Marshal(imagesArr)
		property.Images = string(imagesJSON)
	}

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&property)
}

func DeleteProperty(ctx iris.Context) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if property.HostID != claims.ID && claims.Role != "admin" && claims.Role != "super_admin" {
		utils.CreateError(iris.StatusForbidden, "Forbidden",
			"You don't have permission to delete this property.", ctx)
		return
	}

	if err := storage.DB.Delete(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

type DeletePropertyImageInput struct {
	PropertyID uint   `json:"propertyID" validate:"required"`
	ImageURL   string `json:"imageURL" validate:"required,url"`
}

// DeletePropertyImage removes one image from a listing and destroys the
// Cloudinary asset.
func DeletePropertyImage(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input DeletePropertyImageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	if err := storage.DB.Where("id = ? AND host_id = ?", input.PropertyID, userID).First(&property).Error; err != nil {
		utils.CreateError(iris.StatusForbidden, "Forbidden",
			"Property not found or access denied", ctx)
		return
	}

	var images []string
	if property.Images != "" {
		json.Unmarshal([]byte(property.Images), &images)
	}

	kept := make([]string, 0, len(images))
	removed := false
	for _, url := range images {
		if url == input.ImageURL {
			removed = true
			continue
		}
		kept = append(kept, url)
	}
	if !removed {
		utils.CreateNotFound(ctx)
		return
	}

	imagesJSON, _ := json.Marshal(kept)
	property.Images = string(imagesJSON)
	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Cloudinary public ids are the last path segment without extension.
	if idx := strings.LastIndex(input.ImageURL, "/"); idx >= 0 {
		publicID := input.ImageURL[idx+1:]
		if dot := strings.LastIndex(publicID, "."); dot > 0 {
			publicID = publicID[:dot]
		}
		go storage.DeleteImage(publicID)
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// SearchProperties serves the public browse page. Only published listings
// are returned.
func SearchProperties(ctx iris.Context) {
	query := storage.DB.Where("publish_status = ?", models.PublishStatusPublished)

	if listingType := ctx.URLParam("listingType"); listingType != "" {
		query = query.Where("listing_type = ?", listingType)
	}
	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("lower(city) = lower(?)", city)
	}
	if minPrice := ctx.URLParamFloat64Default("minPrice", 0); minPrice > 0 {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice := ctx.URLParamFloat64Default("maxPrice", 0); maxPrice > 0 {
		query = query.Where("price <= ?", maxPrice)
	}
	if duration := ctx.URLParam("rentDurationType"); duration != "" {
		query = query.Where("rent_duration_type = ?", duration)
	}

	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 20)
	if perPage <= 0 || perPage > 50 {
		perPage = 20
	}

	var total int64
	query.Model(&models.Property{}).Count(&total)

	var properties []models.Property
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&properties).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", err.Error(), ctx)
		return
	}

	utils.JSONPage(ctx, properties, page, perPage, total)
}
