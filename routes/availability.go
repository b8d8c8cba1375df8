package routes

import (
	"encoding/json"
	"time"

	"homestead-server/models"
	"homestead-server/services"
	"homestead-server/storage"
	"homestead-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// Availability endpoints: the calendar the booking clients render, and the
// host-side blocked-date management.

// GetPropertyAvailability returns the property's availability window, the
// host's blocked dates, the confirmed bookings, and per-day disabled
// verdicts over the requested range. The verdicts are advisory: submission
// re-checks conflicts authoritatively.
func GetPropertyAvailability(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found", ctx)
		return
	}

	// Off-market listings short-circuit before any date evaluation.
	if property.IsOffMarket() {
		ctx.JSON(iris.Map{
			"available": false,
			"message":   "This property is no longer available.",
			"status":    property.PublishStatus,
		})
		return
	}

	from := time.Now()
	to := from.AddDate(0, 3, 0)

	if v := ctx.URLParam("from"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			from = d
		}
	}
	if v := ctx.URLParam("to"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			to = d
		}
	}

	var bookings []models.Booking
	if services.SelectMode(&property) == services.ModeFlexibleRange {
		storage.DB.Where("property_id = ? AND status = ?", property.ID, models.BookingStatusConfirmed).
			Find(&bookings)
	}

	ctx.JSON(iris.Map{
		"available":    true,
		"mode":         services.SelectMode(&property),
		"checkinDate":  property.CheckinDate,
		"checkoutDate": property.CheckoutDate,
		"blockedDates": json.RawMessage(blockedDatesOrEmpty(&property)),
		"calendar":     services.CalendarDays(from, to, &property, bookings),
	})
}

func blockedDatesOrEmpty(property *models.Property) []byte {
	if property.BlockedDates == nil {
		return []byte("[]")
	}
	return property.BlockedDates
}

type BlockDatesInput struct {
	PropertyID uint     `json:"propertyID" validate:"required"`
	Dates      []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
}

// BlockPropertyDates lets the host exclude explicit calendar dates,
// independent of any booking.
func BlockPropertyDates(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input BlockDatesInput
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

	existing := map[string]bool{}
	var blocked []string
	if property.BlockedDates != nil {
		json.Unmarshal(property.BlockedDates, &blocked)
		for _, d := range blocked {
			existing[d] = true
		}
	}
	for _, d := range input.Dates {
		if !existing[d] {
			blocked = append(blocked, d)
			existing[d] = true
		}
	}

	encoded, _ := json.Marshal(blocked)
	property.BlockedDates = datatypes.JSON(encoded)

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":      true,
		"blockedDates": blocked,
	})
}

// UnblockPropertyDates removes previously blocked dates.
func UnblockPropertyDates(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input BlockDatesInput
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

	remove := map[string]bool{}
	for _, d := range input.Dates {
		remove[d] = true
	}

	var blocked []string
	if property.BlockedDates != nil {
		json.Unmarshal(property.BlockedDates, &blocked)
	}
	kept := make([]string, 0, len(blocked))
	for _, d := range blocked {
		if !remove[d] {
			kept = append(kept, d)
		}
	}

	encoded, _ := json.Marshal(kept)
	property.BlockedDates = datatypes.JSON(encoded)

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":      true,
		"blockedDates": kept,
	})
}
