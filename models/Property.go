package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing types and rent duration types mirror the values the mobile and web
// clients send; they are stored verbatim.
type ListingType string

const (
	ListingTypeSell ListingType = "SELL"
	ListingTypeRent ListingType = "RENT"
)

type RentDurationType string

const (
	RentDurationMonthly   RentDurationType = "MONTHLY"
	RentDurationYearly    RentDurationType = "YEARLY"
	RentDurationSixMonths RentDurationType = "SIX_MONTHS"
	RentDurationDaily     RentDurationType = "DAILY"
	RentDurationWeekly    RentDurationType = "WEEKLY"
	RentDurationHourly    RentDurationType = "HOURLY"
	RentDurationFlexible  RentDurationType = "FLEXIBLE"
)

type PublishStatus string

const (
	PublishStatusDraft      PublishStatus = "DRAFT"
	PublishStatusInProgress PublishStatus = "IN_PROGRESS"
	PublishStatusPublished  PublishStatus = "PUBLISHED"
	PublishStatusSold       PublishStatus = "SOLD"
	PublishStatusRented     PublishStatus = "RENTED"
)

type Property struct {
	gorm.Model
	HostID           uint             `json:"hostID"`
	Slug             string           `json:"slug" gorm:"uniqueIndex;size:256"`
	Title            string           `json:"title"`
	Description      string           `json:"description" gorm:"type:text"`
	ListingType      ListingType      `json:"listingType" gorm:"type:varchar(10);index"`
	RentDurationType RentDurationType `json:"rentDurationType" gorm:"type:varchar(20)"` // meaningful only when ListingType is RENT
	PublishStatus    PublishStatus    `json:"publishStatus" gorm:"type:varchar(20);default:'DRAFT';index"`

	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Country      string  `json:"country"`
	Lat          float32 `json:"lat"`
	Lng          float32 `json:"lng"`

	Price    float64 `json:"price"`
	Currency string  `json:"currency"`

	// Fixed availability window for flexible-stay rentals. Both optional.
	CheckinDate  *time.Time `json:"checkinDate"`
	CheckoutDate *time.Time `json:"checkoutDate"`
	// Calendar dates the host has explicitly excluded, stored as
	// "2006-01-02" strings.
	BlockedDates datatypes.JSON `json:"blockedDates"`

	// Capacity ceilings for the guest manifest.
	AdultCount    int `json:"adultCount"`
	ChildrenCount int `json:"childrenCount"`

	Bedrooms  int     `json:"bedrooms"`
	Bathrooms float32 `json:"bathrooms"`

	Amenities  datatypes.JSON `json:"amenities"`  // array of amenity ids
	Categories datatypes.JSON `json:"categories"` // array of category ids
	Images     string         `json:"images"`     // JSON array of URLs

	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:PropertyID"`
	Host     User      `json:"host" gorm:"foreignKey:HostID;references:ID"`
}

// IsFlexibleRental reports whether the listing books as a check-in/check-out
// stay rather than a single appointment date.
func (p *Property) IsFlexibleRental() bool {
	return p.ListingType == ListingTypeRent && p.RentDurationType == RentDurationFlexible
}

// IsOffMarket reports whether the listing has been taken off the market
// entirely; the booking flow is replaced by an "unavailable" notice.
func (p *Property) IsOffMarket() bool {
	return p.PublishStatus == PublishStatusSold || p.PublishStatus == PublishStatusRented
}

// BlockedDateList decodes BlockedDates; an absent column is an empty list.
func (p *Property) BlockedDateList() []time.Time {
	if p.BlockedDates == nil {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(p.BlockedDates, &raw); err != nil {
		return nil
	}
	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			dates = append(dates, d)
		}
	}
	return dates
}

// Custom JSON marshaling to convert JSON columns to arrays and strip the
// circular host->properties reference.
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images       []string `json:"images"`
		Amenities    []int    `json:"amenities"`
		Categories   []int    `json:"categories"`
		BlockedDates []string `json:"blockedDates"`
		Host         *User    `json:"host,omitempty"`
		*Alias
	}{
		Images:       []string{},
		Amenities:    []int{},
		Categories:   []int{},
		BlockedDates: []string{},
		Alias:        (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}
	if p.Amenities != nil {
		var amenities []int
		if err := json.Unmarshal(p.Amenities, &amenities); err == nil {
			aux.Amenities = amenities
		}
	}
	if p.Categories != nil {
		var categories []int
		if err := json.Unmarshal(p.Categories, &categories); err == nil {
			aux.Categories = categories
		}
	}
	if p.BlockedDates != nil {
		var blocked []string
		if err := json.Unmarshal(p.BlockedDates, &blocked); err == nil {
			aux.BlockedDates = blocked
		}
	}

	if p.Host.ID > 0 {
		hostCopy := p.Host
		hostCopy.Properties = nil // avoid circular reference
		aux.Host = &hostCopy
	}

	return json.Marshal(aux)
}
