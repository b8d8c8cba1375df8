package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingKind string

const (
	// BookingKindFlexibleRange is a check-in/check-out stay against a
	// flexible rental.
	BookingKindFlexibleRange BookingKind = "flexible_range"
	// BookingKindAppointment is a single-date visit/transaction request for
	// sales and fixed-duration rentals.
	BookingKindAppointment BookingKind = "appointment"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is either a flexible-stay reservation or an appointment request.
// Kind is the discriminant: flexible_range rows carry CheckInDate/CheckOutDate,
// appointment rows carry AppointmentRequestedDate. Only confirmed rows block
// occupancy.
type Booking struct {
	gorm.Model
	PropertyID uint  `json:"propertyId" gorm:"not null;index"`
	UserID     *uint `json:"userId" gorm:"index"` // nil for anonymous guests

	Kind                     BookingKind `json:"kind" gorm:"type:varchar(20);not null"`
	CheckInDate              *time.Time  `json:"checkInDate"`
	CheckOutDate             *time.Time  `json:"checkOutDate"`
	AppointmentRequestedDate *time.Time  `json:"appointmentRequestedDate"`

	PaymentMethod string        `json:"paymentMethod" gorm:"size:32"`
	Status        BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TotalPrice    float64       `json:"totalPrice"`
	ExpiresAt     time.Time     `json:"expiresAt"` // 24h window for pending requests

	// Client info captured at submission time.
	ClientName     string `json:"clientName"`
	ClientEmail    string `json:"clientEmail"`
	ClientPhone    string `json:"clientPhone"`
	ClientAddress  string `json:"clientAddress"`
	Note           string `json:"note" gorm:"size:1000"`
	NIDDocumentURL string `json:"nidDocumentUrl" gorm:"size:512"`

	// Guest manifest (flexible-stay only). NumberOfGuests is the
	// form-of-record; adults are back-computed from it at assembly time.
	NumberOfAdults   int            `json:"numberOfAdults"`
	NumberOfChildren int            `json:"numberOfChildren"`
	NumberOfGuests   int            `json:"numberOfGuests"`
	GuestNames       datatypes.JSON `json:"guestNames"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// GuestNameList decodes the guest manifest; absent means empty.
func (b *Booking) GuestNameList() []string {
	if b.GuestNames == nil {
		return nil
	}
	var names []string
	if err := json.Unmarshal(b.GuestNames, &names); err != nil {
		return nil
	}
	return names
}

func (b *Booking) MarshalJSON() ([]byte, error) {
	type Alias Booking
	aux := &struct {
		GuestNames []string `json:"guestNames"`
		*Alias
	}{
		GuestNames: []string{},
		Alias:      (*Alias)(b),
	}
	if names := b.GuestNameList(); names != nil {
		aux.GuestNames = names
	}
	return json.Marshal(aux)
}
