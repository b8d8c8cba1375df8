package routes

import (
	"homestead-server/models"
	"homestead-server/storage"
	"homestead-server/utils"

	"github.com/kataras/iris/v12"
)

// Public reference data for the listing and booking screens.

func GetCategories(ctx iris.Context) {
	var categories []models.Category
	if err := storage.DB.Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&categories).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(categories)
}

func GetAmenities(ctx iris.Context) {
	query := storage.DB.Where("is_active = ?", true)
	if category := ctx.URLParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var amenities []models.Amenity
	if err := query.Order("sort_order ASC, id ASC").Find(&amenities).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(amenities)
}

// GetAmenityCategories returns the distinct grouping keys used by amenities.
func GetAmenityCategories(ctx iris.Context) {
	var categories []string
	if err := storage.DB.Model(&models.Amenity{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"categories": categories})
}

// Admin-side management.

type CategoryInput struct {
	Name        models.LocalizedNames `json:"name" validate:"required"`
	Icon        string                `json:"icon"`
	Description models.LocalizedNames `json:"description"`
	IsActive    *bool                 `json:"isActive"`
	SortOrder   int                   `json:"sortOrder"`
}

func CreateCategory(ctx iris.Context) {
	var input CategoryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	category := models.Category{
		Name:        input.Name,
		Icon:        input.Icon,
		Description: input.Description,
		IsActive:    active,
		SortOrder:   input.SortOrder,
	}

	if err := storage.DB.Create(&category).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "category.create", "category", category.ID, nil, category)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(category)
}

func UpdateCategory(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var category models.Category
	if err := storage.DB.First(&category, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	before := category

	var input CategoryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	category.Name = input.Name
	category.Icon = input.Icon
	category.Description = input.Description
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	category.SortOrder = input.SortOrder

	if err := storage.DB.Save(&category).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "category.update", "category", category.ID, before, category)

	ctx.JSON(category)
}

func DeleteCategory(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var category models.Category
	if err := storage.DB.First(&category, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Delete(&category).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "category.delete", "category", category.ID, category, nil)

	ctx.StatusCode(iris.StatusNoContent)
}

type AmenityInput struct {
	Name        models.LocalizedNames `json:"name" validate:"required"`
	Icon        string                `json:"icon"`
	Category    string                `json:"category" validate:"required,max=64"`
	Description models.LocalizedNames `json:"description"`
	IsActive    *bool                 `json:"isActive"`
	SortOrder   int                   `json:"sortOrder"`
}

func CreateAmenity(ctx iris.Context) {
	var input AmenityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	amenity := models.Amenity{
		Name:        input.Name,
		Icon:        input.Icon,
		Category:    input.Category,
		Description: input.Description,
		IsActive:    active,
		SortOrder:   input.SortOrder,
	}

	if err := storage.DB.Create(&amenity).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "amenity.create", "amenity", amenity.ID, nil, amenity)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(amenity)
}

func UpdateAmenity(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var amenity models.Amenity
	if err := storage.DB.First(&amenity, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	before := amenity

	var input AmenityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amenity.Name = input.Name
	amenity.Icon = input.Icon
	amenity.Category = input.Category
	amenity.Description = input.Description
	if input.IsActive != nil {
		amenity.IsActive = *input.IsActive
	}
	amenity.SortOrder = input.SortOrder

	if err := storage.DB.Save(&amenity).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "amenity.update", "amenity", amenity.ID, before, amenity)

	ctx.JSON(amenity)
}

func DeleteAmenity(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var amenity models.Amenity
	if err := storage.DB.First(&amenity, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Delete(&amenity).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "amenity.delete", "amenity", amenity.ID, amenity, nil)

	ctx.StatusCode(iris.StatusNoContent)
}
