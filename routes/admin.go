package routes

import (
	"net/http"
	"strings"
	"time"

	"homestead-server/models"
	"homestead-server/services"
	"homestead-server/storage"
	"homestead-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// Admin back-office endpoints. All routes in this file sit behind the
// AdminOnlyMiddleware; role changes additionally require super_admin.

// GET /admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// PATCH /admin/users/:id/role (super_admin only)
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	validRoles := map[string]bool{"user": true, "host": true, "admin": true, "super_admin": true}
	if err := ctx.ReadJSON(&body); err != nil || !validRoles[body.Role] {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_role", "role must be user/host/admin/super_admin")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)

	ctx.JSON(iris.Map{"data": user})
}

// GET /admin/properties?publishStatus=&listingType=&page=&per_page=
func AdminListProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	query := storage.DB.Model(&models.Property{})
	if status := ctx.URLParam("publishStatus"); status != "" {
		query = query.Where("publish_status = ?", status)
	}
	if listingType := ctx.URLParam("listingType"); listingType != "" {
		query = query.Where("listing_type = ?", listingType)
	}

	var total int64
	query.Count(&total)

	var properties []models.Property
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&properties).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, properties, page, perPage, total)
}

// PATCH /admin/properties/:id/status { publishStatus }
// Moving a listing to SOLD or RENTED is what closes it to new bookings.
func AdminChangePropertyStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		PublishStatus string `json:"publishStatus"`
	}
	valid := map[string]bool{"DRAFT": true, "IN_PROGRESS": true, "PUBLISHED": true, "SOLD": true, "RENTED": true}
	if err := ctx.ReadJSON(&body); err != nil || !valid[body.PublishStatus] {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_status",
			"publishStatus must be DRAFT/IN_PROGRESS/PUBLISHED/SOLD/RENTED")
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}

	before := property
	property.PublishStatus = models.PublishStatus(body.PublishStatus)
	if err := storage.DB.Save(&property).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "property.status_update", "property", property.ID, before, property)

	ctx.JSON(iris.Map{"data": property})
}

// GET /admin/bookings?status=&kind=&propertyId=&page=&per_page=
func AdminListBookings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	query := storage.DB.Model(&models.Booking{}).Preload("Property")
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if kind := ctx.URLParam("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if propertyID := ctx.URLParam("propertyId"); propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&bookings).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, bookings, page, perPage, total)
}

// PATCH /admin/bookings/:id/status { status }
func AdminChangeBookingStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	valid := map[string]bool{"pending": true, "confirmed": true, "cancelled": true, "completed": true}
	if err := ctx.ReadJSON(&body); err != nil || !valid[body.Status] {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_status",
			"status must be pending/confirmed/cancelled/completed")
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Property").First(&booking, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "booking not found")
		return
	}

	before := booking
	booking.Status = models.BookingStatus(body.Status)

	if booking.Status == models.BookingStatusConfirmed &&
		booking.Kind == models.BookingKindFlexibleRange &&
		booking.CheckInDate != nil && booking.CheckOutDate != nil {
		conflict := false
		txErr := withPropertyLock(booking.PropertyID, func(tx *gorm.DB) error {
			if hasConfirmedOverlap(tx, booking.PropertyID, *booking.CheckInDate, *booking.CheckOutDate) {
				conflict = true
				return nil
			}
			return tx.Save(&booking).Error
		})
		if txErr != nil {
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", txErr.Error())
			return
		}
		if conflict {
			utils.JSONError(ctx, http.StatusConflict, "conflict",
				"an overlapping confirmed booking already exists")
			return
		}
	} else if err := storage.DB.Save(&booking).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "booking.status_update", "booking", booking.ID, before, booking)

	if booking.UserID != nil && booking.Property != nil {
		notificationService := services.NewNotificationService()
		go notificationService.SendBookingStatusToGuest(
			booking.ID, *booking.UserID, booking.Property.Title, booking.Status)
	}

	ctx.JSON(iris.Map{"data": booking})
}

// GET /admin/stats, headline counts for the dashboard.
func AdminStats(ctx iris.Context) {
	var userCount, propertyCount, bookingCount, pendingCount int64
	storage.DB.Model(&models.User{}).Count(&userCount)
	storage.DB.Model(&models.Property{}).Count(&propertyCount)
	storage.DB.Model(&models.Booking{}).Count(&bookingCount)
	storage.DB.Model(&models.Booking{}).
		Where("status = ?", models.BookingStatusPending).Count(&pendingCount)

	var recentBookings int64
	storage.DB.Model(&models.Booking{}).
		Where("created_at > ?", time.Now().AddDate(0, 0, -7)).Count(&recentBookings)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"users":           userCount,
			"properties":      propertyCount,
			"bookings":        bookingCount,
			"pendingBookings": pendingCount,
			"bookingsLast7d":  recentBookings,
		},
	})
}

// GET /admin/audit?resourceType=&page=&per_page=
func AdminListAuditLogs(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 50)
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := storage.DB.Model(&models.AuditLog{})
	if resourceType := ctx.URLParam("resourceType"); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	var total int64
	query.Count(&total)

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, logs, page, perPage, total)
}
