package routes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homestead-server/models"
	"homestead-server/services"
	"homestead-server/storage"
	"homestead-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Booking endpoints. Appointments (sales and fixed-duration rentals) submit
// directly; flexible stays are staged and finalized by the payment step.

func GetBookingsByPropertyID(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var bookings []models.Booking
	res := storage.DB.Where("property_id = ? AND status != ?", id, models.BookingStatusCancelled).
		Order("created_at DESC").Find(&bookings)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(bookings)
}

func GetUserBookings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var bookings []models.Booking
	res := storage.DB.Preload("Property").Preload("Property.Host").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(bookings)
}

// parseSubmissionInput accepts either application/json or multipart form
// data; multipart is required whenever an identity document accompanies the
// booking. The uploaded document URL lands in Client.NIDDocumentURL.
func parseSubmissionInput(ctx iris.Context) (services.SubmissionInput, error) {
	var input services.SubmissionInput

	contentType := ctx.GetHeader("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		err := ctx.ReadJSON(&input)
		return input, err
	}

	input.AgreedToTerms = ctx.FormValue("agreedToTerms") == "true"
	input.PaymentMethod = ctx.FormValue("paymentMethod")

	if v := ctx.FormValue("checkInDate"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			input.CheckInDate = &d
		}
	}
	if v := ctx.FormValue("checkOutDate"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			input.CheckOutDate = &d
		}
	}
	if v := ctx.FormValue("appointmentDate"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			input.AppointmentDate = &d
		}
	}

	input.Client.Name = ctx.FormValue("name")
	input.Client.Email = ctx.FormValue("email")
	input.Client.Phone = ctx.FormValue("phone")
	input.Client.Address = ctx.FormValue("address")
	input.Client.Note = ctx.FormValue("note")
	input.Client.NumberOfAdults, _ = strconv.Atoi(ctx.FormValue("numberOfAdults"))
	input.Client.NumberOfChildren, _ = strconv.Atoi(ctx.FormValue("numberOfChildren"))
	input.Client.NumberOfGuests, _ = strconv.Atoi(ctx.FormValue("numberOfGuests"))

	if names := ctx.FormValue("guestNames"); names != "" {
		json.Unmarshal([]byte(names), &input.Client.GuestNames)
	}

	file, header, err := ctx.FormFile("nidDocument")
	if err == nil && header != nil {
		defer file.Close()
		publicID := fmt.Sprintf("nid_%d_%s", time.Now().UnixNano(), utils.GenerateShortToken(4))
		url, uploadErr := storage.UploadDocument(file, publicID)
		if uploadErr != nil {
			return input, uploadErr
		}
		input.Client.NIDDocumentURL = url
	}

	return input, nil
}

// requireBookableProperty loads the property and applies the off-market
// gate: SOLD and RENTED listings never reach date evaluation.
func requireBookableProperty(ctx iris.Context) (*models.Property, bool) {
	id := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found", ctx)
		return nil, false
	}

	if property.IsOffMarket() {
		utils.CreateError(iris.StatusGone, "Unavailable",
			"This property is no longer available for booking.", ctx)
		return nil, false
	}

	return &property, true
}

// requireGuestRole rejects host/admin accounts: bookings are made by guest
// users only.
func requireGuestRole(ctx iris.Context) (uint, bool) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	if claims.Role != "user" {
		utils.CreateError(iris.StatusForbidden, "Forbidden",
			"Please log in as a guest user to book this property.", ctx)
		return 0, false
	}
	return claims.ID, true
}

// hasPendingBooking is the duplicate-request guard behind the 409 response.
func hasPendingBooking(propertyID, userID uint) bool {
	var count int64
	storage.DB.Model(&models.Booking{}).
		Where("property_id = ? AND user_id = ? AND status = ?",
			propertyID, userID, models.BookingStatusPending).
		Count(&count)
	return count > 0
}

// hasConfirmedOverlap is the authoritative conflict check run at submission
// time. Bounds are inclusive on both ends to match the calendar predicate.
// Callers that go on to write occupancy must run it through withPropertyLock.
func hasConfirmedOverlap(db *gorm.DB, propertyID uint, checkIn, checkOut time.Time) bool {
	var count int64
	db.Model(&models.Booking{}).
		Where("property_id = ? AND status = ? AND check_in_date <= ? AND check_out_date >= ?",
			propertyID, models.BookingStatusConfirmed, checkOut, checkIn).
		Count(&count)
	return count > 0
}

// withPropertyLock runs fn inside a transaction holding a row lock on the
// property, so an overlap check and the write it guards are atomic under
// concurrent submissions or confirms of the same property.
func withPropertyLock(propertyID uint, fn func(tx *gorm.DB) error) error {
	return storage.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Property
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, propertyID).Error; err != nil {
			return err
		}
		return fn(tx)
	})
}

func handleAssemblyError(err error, ctx iris.Context) {
	utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
}

// CreateBooking handles the direct appointment submission path. Flexible
// rentals must go through the staging + payment flow instead.
func CreateBooking(ctx iris.Context) {
	input, err := parseSubmissionInput(ctx)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// The terms gate fires before any storage access.
	if !input.AgreedToTerms {
		handleAssemblyError(services.ErrTermsNotAccepted, ctx)
		return
	}

	userID, ok := requireGuestRole(ctx)
	if !ok {
		return
	}

	property, ok := requireBookableProperty(ctx)
	if !ok {
		return
	}

	if services.SelectMode(property) == services.ModeFlexibleRange {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"Flexible stays must be staged and paid for; use the stage endpoint.", ctx)
		return
	}

	request, err := services.AssembleBookingRequest(property, &userID, input)
	if err != nil {
		handleAssemblyError(err, ctx)
		return
	}

	if hasPendingBooking(property.ID, userID) {
		utils.CreateError(iris.StatusConflict, "Conflict",
			"You already have a pending request for this property.", ctx)
		return
	}

	booking := request.ToModel()
	booking.TotalPrice = request.TotalPrice(property)

	if err := storage.DB.Create(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notifyBookingCreated(&booking, property)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(booking)
}

// StageBooking validates a flexible-stay submission and parks it awaiting
// the payment step. Nothing is persisted to Postgres here.
func StageBooking(ctx iris.Context) {
	input, err := parseSubmissionInput(ctx)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !input.AgreedToTerms {
		handleAssemblyError(services.ErrTermsNotAccepted, ctx)
		return
	}

	userID, ok := requireGuestRole(ctx)
	if !ok {
		return
	}

	property, ok := requireBookableProperty(ctx)
	if !ok {
		return
	}

	if services.SelectMode(property) != services.ModeFlexibleRange {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"Only flexible stays are staged; appointments submit directly.", ctx)
		return
	}

	request, err := services.AssembleBookingRequest(property, &userID, input)
	if err != nil {
		handleAssemblyError(err, ctx)
		return
	}

	// Advisory availability pass over the requested range. The snapshot may
	// already be stale; the payment step re-checks authoritatively.
	var existing []models.Booking
	storage.DB.Where("property_id = ? AND status = ?", property.ID, models.BookingStatusConfirmed).
		Find(&existing)

	stay := request.FlexibleStay
	for d := stay.CheckInDate; !d.After(stay.CheckOutDate); d = d.AddDate(0, 0, 1) {
		if services.DisabledDate(d, property, existing) {
			utils.CreateError(iris.StatusConflict, "Conflict",
				"Selected dates are not available.", ctx)
			return
		}
	}

	session, err := services.StageBookingSession(request)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"sessionID": session.ID,
		"state":     session.State,
		"expiresIn": "30m",
	})
}

// SubmitBookingPayment finalizes a staged flexible-stay draft. This is the
// single authoritative write: the conflict re-check and the insert happen
// here, and a 409 is the expected signal when another guest won the dates.
func SubmitBookingPayment(ctx iris.Context) {
	sessionID := ctx.Params().Get("sessionID")

	session, err := services.LoadBookingSession(sessionID)
	if err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found",
			"Booking session expired or not found.", ctx)
		return
	}

	if err := session.Transition(services.StateSubmitting); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	// The payment step may attach the identity document.
	if strings.HasPrefix(ctx.GetHeader("Content-Type"), "multipart/form-data") {
		if file, header, err := ctx.FormFile("nidDocument"); err == nil && header != nil {
			defer file.Close()
			publicID := fmt.Sprintf("nid_%d_%s", time.Now().UnixNano(), utils.GenerateShortToken(4))
			url, uploadErr := storage.UploadDocument(file, publicID)
			if uploadErr != nil {
				utils.CreateInternalServerError(ctx)
				return
			}
			session.Request.FlexibleStay.Client.NIDDocumentURL = url
		}
		if method := ctx.FormValue("paymentMethod"); method != "" {
			session.Request.FlexibleStay.PaymentMethod = method
		}
	}

	stay := session.Request.FlexibleStay

	var property models.Property
	if err := storage.DB.First(&property, stay.PropertyID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found", ctx)
		return
	}

	failSession := func() {
		session.Transition(services.StateFailed)
		session.Transition(services.StateDatesSelected)
		services.SaveBookingSession(session)
	}

	if stay.UserID != nil && hasPendingBooking(stay.PropertyID, *stay.UserID) {
		failSession()
		utils.CreateError(iris.StatusConflict, "Conflict",
			"You already have a pending request for this property.", ctx)
		return
	}

	booking := session.Request.ToModel()
	booking.TotalPrice = session.Request.TotalPrice(&property)

	// The overlap re-check and the insert run under a property row lock so
	// two guests racing for the same dates cannot both pass the check.
	conflict := false
	txErr := withPropertyLock(stay.PropertyID, func(tx *gorm.DB) error {
		if hasConfirmedOverlap(tx, stay.PropertyID, stay.CheckInDate, stay.CheckOutDate) {
			conflict = true
			return nil
		}
		return tx.Create(&booking).Error
	})
	if txErr != nil {
		failSession()
		utils.CreateInternalServerError(ctx)
		return
	}
	if conflict {
		failSession()
		utils.CreateError(iris.StatusConflict, "Conflict",
			"Selected dates are no longer available.", ctx)
		return
	}

	session.Transition(services.StateSuccess)
	services.DiscardBookingSession(session.ID)

	notifyBookingCreated(&booking, &property)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(booking)
}

// AbandonBookingSession discards a staged draft; no side effects remain.
func AbandonBookingSession(ctx iris.Context) {
	sessionID := ctx.Params().Get("sessionID")
	services.DiscardBookingSession(sessionID)
	ctx.StatusCode(iris.StatusNoContent)
}

func notifyBookingCreated(booking *models.Booking, property *models.Property) {
	notificationService := services.NewNotificationService()
	go notificationService.SendBookingRequestToHost(
		booking.ID, property.ID, property.HostID, booking.ClientName, property.Title)

	if booking.ClientEmail != "" {
		subject := "Booking Request Received"
		html := fmt.Sprintf(
			`<p>Hi %s,</p><p>We received your booking request for <b>%s</b>.
			The host will review it within 24 hours.</p>`,
			booking.ClientName, property.Title)
		go utils.SendMail(booking.ClientEmail, subject, html)
	}
}

type UpdateBookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

// UpdateBookingStatus is the host action: confirm or cancel a pending
// booking. Confirmation is what makes a booking occupancy-blocking.
func UpdateBookingStatus(ctx iris.Context) {
	id := ctx.Params().Get("id")
	userID := ctx.Values().Get("userID").(uint)

	var input UpdateBookingStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Property").First(&booking, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found", ctx)
		return
	}

	if booking.Property == nil || booking.Property.HostID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden",
			"Only the property host can update this booking.", ctx)
		return
	}

	booking.Status = models.BookingStatus(input.Status)

	// Confirming a flexible stay must not create a double booking, so the
	// overlap check and the status write share a property row lock.
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
			utils.CreateInternalServerError(ctx)
			return
		}
		if conflict {
			utils.CreateError(iris.StatusConflict, "Conflict",
				"An overlapping confirmed booking already exists.", ctx)
			return
		}
	} else if err := storage.DB.Save(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if booking.UserID != nil {
		notificationService := services.NewNotificationService()
		go notificationService.SendBookingStatusToGuest(
			booking.ID, *booking.UserID, booking.Property.Title, booking.Status)
	}

	ctx.JSON(booking)
}

// CancelBooking lets a guest withdraw their own pending booking.
func CancelBooking(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var booking models.Booking
	if err := storage.DB.Where("id = ? AND user_id = ?", id, userID).First(&booking).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found", ctx)
		return
	}

	if booking.Status != models.BookingStatusPending {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"Only pending bookings can be cancelled.", ctx)
		return
	}

	booking.Status = models.BookingStatusCancelled
	if err := storage.DB.Save(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Booking cancelled successfully"})
}

// ExpirePendingBookings sets pending requests past their 24h window to
// cancelled. Called by a scheduler.
func ExpirePendingBookings(ctx iris.Context) {
	storage.DB.Model(&models.Booking{}).
		Where("status = ? AND expires_at < ?", models.BookingStatusPending, time.Now()).
		Update("status", models.BookingStatusCancelled)
	ctx.JSON(iris.Map{"ok": true})
}
