package services

import (
	"testing"
	"time"

	"homestead-server/models"

	"gorm.io/datatypes"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func confirmedBooking(checkIn, checkOut string) models.Booking {
	return models.Booking{
		Status:       models.BookingStatusConfirmed,
		CheckInDate:  datePtr(checkIn),
		CheckOutDate: datePtr(checkOut),
	}
}

func TestDisabledDateAt(t *testing.T) {
	today := date("2024-06-01")

	property := &models.Property{
		ListingType:      models.ListingTypeRent,
		RentDurationType: models.RentDurationFlexible,
		CheckinDate:      datePtr("2024-06-01"),
		CheckoutDate:     datePtr("2024-08-31"),
		BlockedDates:     datatypes.JSON([]byte(`["2024-06-15"]`)),
	}

	bookings := []models.Booking{
		confirmedBooking("2024-06-05", "2024-06-06"),
	}

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"past date", "2024-05-20", true},
		{"today is selectable", "2024-06-01", false},
		{"before window opens", "2024-05-31", true},
		{"after window closes", "2024-09-01", true},
		{"host blocked date", "2024-06-15", true},
		{"day before stay", "2024-06-04", false},
		{"check-in day of confirmed stay", "2024-06-05", true},
		{"checkout day stays blocked", "2024-06-06", true},
		{"day after checkout opens up", "2024-06-07", false},
		{"plain open day", "2024-07-10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisabledDateAt(today, date(tt.candidate), property, bookings)
			if got != tt.want {
				t.Errorf("DisabledDateAt(%s) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestDisabledDateAtNilBookingsFailsOpen(t *testing.T) {
	today := date("2024-06-01")
	property := &models.Property{
		ListingType:      models.ListingTypeRent,
		RentDurationType: models.RentDurationFlexible,
	}

	if DisabledDateAt(today, date("2024-06-10"), property, nil) {
		t.Error("future date with nil bookings should be selectable")
	}
}

func TestDisabledDateIgnoresNonConfirmedBookings(t *testing.T) {
	today := date("2024-06-01")
	property := &models.Property{
		ListingType:      models.ListingTypeRent,
		RentDurationType: models.RentDurationFlexible,
	}

	bookings := []models.Booking{
		{
			Status:       models.BookingStatusPending,
			CheckInDate:  datePtr("2024-06-10"),
			CheckOutDate: datePtr("2024-06-12"),
		},
		{
			Status:       models.BookingStatusCancelled,
			CheckInDate:  datePtr("2024-06-10"),
			CheckOutDate: datePtr("2024-06-12"),
		},
	}

	if DisabledDateAt(today, date("2024-06-11"), property, bookings) {
		t.Error("pending and cancelled bookings must not block dates")
	}
}

func TestDisabledDateAtNoWindow(t *testing.T) {
	// Both window bounds unset: only the past rule and bookings apply.
	today := date("2024-06-01")
	property := &models.Property{
		ListingType:      models.ListingTypeRent,
		RentDurationType: models.RentDurationFlexible,
	}

	if DisabledDateAt(today, date("2030-01-01"), property, nil) {
		t.Error("far-future date with no window should be selectable")
	}
	if !DisabledDateAt(today, date("2024-05-31"), property, nil) {
		t.Error("yesterday should be disabled regardless of window")
	}
}

func TestCalendarDaysAt(t *testing.T) {
	today := date("2024-07-01")
	property := &models.Property{
		ListingType:      models.ListingTypeRent,
		RentDurationType: models.RentDurationFlexible,
		CheckinDate:      datePtr("2024-07-01"),
		CheckoutDate:     datePtr("2024-07-31"),
		BlockedDates:     datatypes.JSON([]byte(`["2024-07-04"]`)),
	}
	bookings := []models.Booking{
		confirmedBooking("2024-07-10", "2024-07-12"),
	}

	days := CalendarDaysAt(today, date("2024-07-01"), date("2024-07-15"), property, bookings)

	if len(days) != 15 {
		t.Fatalf("expected 15 days, got %d", len(days))
	}

	byDate := map[string]bool{}
	for _, d := range days {
		byDate[d.Date] = d.Disabled
	}

	expectations := map[string]bool{
		"2024-07-01": false,
		"2024-07-04": true, // host blocked
		"2024-07-09": false,
		"2024-07-10": true, // stay begins
		"2024-07-12": true, // checkout day, inclusive
		"2024-07-13": false,
	}
	for day, want := range expectations {
		if byDate[day] != want {
			t.Errorf("day %s: disabled = %v, want %v", day, byDate[day], want)
		}
	}
}
