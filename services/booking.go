package services

import (
	"encoding/json"
	"errors"
	"time"

	"homestead-server/models"

	"gorm.io/datatypes"
)

// Booking submission assembler. Turns form input into exactly one of the two
// reservation shapes, enforcing the validation order the clients rely on:
// terms first, then dates, then the guest manifest. Flexible stays are staged
// for a payment step; appointments submit directly.

type BookingMode string

const (
	ModeFlexibleRange BookingMode = "FLEXIBLE_RANGE"
	ModeAppointment   BookingMode = "APPOINTMENT"
)

// SelectMode fixes the booking workflow for a property. Flexible-stay
// rentals take a check-in/check-out range; everything else (sales and
// fixed-duration rentals) takes a single appointment date.
func SelectMode(property *models.Property) BookingMode {
	if property.IsFlexibleRental() {
		return ModeFlexibleRange
	}
	return ModeAppointment
}

// Validation failures, reported before anything touches the database.
var (
	ErrTermsNotAccepted     = errors.New("terms of service must be accepted before booking")
	ErrMissingStayDates     = errors.New("both check-in and check-out dates are required")
	ErrInvalidStayRange     = errors.New("check-out must be after check-in")
	ErrMissingAppointment   = errors.New("an appointment date is required")
	ErrGuestManifestMissing = errors.New("each additional guest must be named")
)

// ClientInfo is the session-scoped form draft: who is booking and who they
// bring along. Discarded after submission or when the session is abandoned.
type ClientInfo struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	Note             string   `json:"note"`
	NIDDocumentURL   string   `json:"nidDocumentUrl,omitempty"`
	NumberOfAdults   int      `json:"numberOfAdults"`
	NumberOfChildren int      `json:"numberOfChildren"`
	NumberOfGuests   int      `json:"numberOfGuests"`
	GuestNames       []string `json:"guestNames"`
}

// FlexibleStayRequest books an occupancy range against a flexible rental.
type FlexibleStayRequest struct {
	PropertyID    uint       `json:"propertyId"`
	UserID        *uint      `json:"userId"`
	CheckInDate   time.Time  `json:"checkInDate"`
	CheckOutDate  time.Time  `json:"checkOutDate"`
	PaymentMethod string     `json:"paymentMethod"`
	Client        ClientInfo `json:"client"`
}

// AppointmentRequest books a visit/transaction on a single date.
type AppointmentRequest struct {
	PropertyID    uint       `json:"propertyId"`
	UserID        *uint      `json:"userId"`
	RequestedDate time.Time  `json:"appointmentRequestedDate"`
	PaymentMethod string     `json:"paymentMethod"`
	Client        ClientInfo `json:"client"`
}

// BookingRequest is a tagged union: exactly one of the two shapes is set,
// determined solely by the property's mode.
type BookingRequest struct {
	Mode         BookingMode          `json:"mode"`
	FlexibleStay *FlexibleStayRequest `json:"flexibleStay,omitempty"`
	Appointment  *AppointmentRequest  `json:"appointment,omitempty"`
}

// SubmissionInput is what the booking form hands over on submit.
type SubmissionInput struct {
	AgreedToTerms   bool       `json:"agreedToTerms"`
	CheckInDate     *time.Time `json:"checkInDate"`
	CheckOutDate    *time.Time `json:"checkOutDate"`
	AppointmentDate *time.Time `json:"appointmentDate"`
	PaymentMethod   string     `json:"paymentMethod"`
	Client          ClientInfo `json:"client"`
}

// reconcileGuestCounts back-computes adults from the total guest count.
// NumberOfGuests is the form-of-record; the running adults counter in the
// form is never trusted at submission time.
func reconcileGuestCounts(c *ClientInfo) {
	if c.NumberOfGuests > 0 {
		c.NumberOfAdults = c.NumberOfGuests - c.NumberOfChildren
	}
}

// validateGuestManifest enforces the manifest invariant: every occupant
// beyond the primary booker has a name slot.
func validateGuestManifest(c ClientInfo) error {
	occupants := c.NumberOfAdults + c.NumberOfChildren
	if occupants <= 1 {
		return nil
	}
	expected := occupants - 1
	if len(c.GuestNames) != expected {
		return ErrGuestManifestMissing
	}
	return nil
}

// AssembleBookingRequest validates the submission and produces exactly one
// request shape. Validation order matters and is observable: the terms gate
// fires before anything else, so an unchecked box never produces a request
// of either shape.
func AssembleBookingRequest(property *models.Property, userID *uint, input SubmissionInput) (*BookingRequest, error) {
	if !input.AgreedToTerms {
		return nil, ErrTermsNotAccepted
	}

	mode := SelectMode(property)

	switch mode {
	case ModeFlexibleRange:
		if input.CheckInDate == nil || input.CheckOutDate == nil {
			return nil, ErrMissingStayDates
		}
		if !input.CheckOutDate.After(*input.CheckInDate) {
			return nil, ErrInvalidStayRange
		}

		client := input.Client
		reconcileGuestCounts(&client)
		if err := validateGuestManifest(client); err != nil {
			return nil, err
		}

		return &BookingRequest{
			Mode: ModeFlexibleRange,
			FlexibleStay: &FlexibleStayRequest{
				PropertyID:    property.ID,
				UserID:        userID,
				CheckInDate:   *input.CheckInDate,
				CheckOutDate:  *input.CheckOutDate,
				PaymentMethod: input.PaymentMethod,
				Client:        client,
			},
		}, nil

	default:
		if input.AppointmentDate == nil {
			return nil, ErrMissingAppointment
		}

		return &BookingRequest{
			Mode: ModeAppointment,
			Appointment: &AppointmentRequest{
				PropertyID:    property.ID,
				UserID:        userID,
				RequestedDate: *input.AppointmentDate,
				PaymentMethod: input.PaymentMethod,
				Client:        input.Client,
			},
		}, nil
	}
}

// ToModel maps the assembled request onto a persistable booking row. New
// rows always start pending with a 24h expiry window.
func (r *BookingRequest) ToModel() models.Booking {
	booking := models.Booking{
		Status:    models.BookingStatusPending,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	switch r.Mode {
	case ModeFlexibleRange:
		req := r.FlexibleStay
		checkIn := req.CheckInDate
		checkOut := req.CheckOutDate
		booking.Kind = models.BookingKindFlexibleRange
		booking.PropertyID = req.PropertyID
		booking.UserID = req.UserID
		booking.CheckInDate = &checkIn
		booking.CheckOutDate = &checkOut
		booking.PaymentMethod = req.PaymentMethod
		applyClientInfo(&booking, req.Client)
	default:
		req := r.Appointment
		date := req.RequestedDate
		booking.Kind = models.BookingKindAppointment
		booking.PropertyID = req.PropertyID
		booking.UserID = req.UserID
		booking.AppointmentRequestedDate = &date
		booking.PaymentMethod = req.PaymentMethod
		applyClientInfo(&booking, req.Client)
	}

	return booking
}

func applyClientInfo(booking *models.Booking, client ClientInfo) {
	booking.ClientName = client.Name
	booking.ClientEmail = client.Email
	booking.ClientPhone = client.Phone
	booking.ClientAddress = client.Address
	booking.Note = client.Note
	booking.NIDDocumentURL = client.NIDDocumentURL
	booking.NumberOfAdults = client.NumberOfAdults
	booking.NumberOfChildren = client.NumberOfChildren
	booking.NumberOfGuests = client.NumberOfGuests

	names := client.GuestNames
	if names == nil {
		names = []string{}
	}
	if encoded, err := json.Marshal(names); err == nil {
		booking.GuestNames = datatypes.JSON(encoded)
	}
}

// TotalPrice derives the charge for the request. Flexible stays bill per
// night on the listing price; appointments carry no upfront charge.
func (r *BookingRequest) TotalPrice(property *models.Property) float64 {
	if r.Mode != ModeFlexibleRange || r.FlexibleStay == nil {
		return 0
	}
	nights := int(r.FlexibleStay.CheckOutDate.Sub(r.FlexibleStay.CheckInDate).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return property.Price * float64(nights)
}
