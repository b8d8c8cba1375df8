package services

import (
	"time"

	"homestead-server/models"
)

// Availability calculator for the booking flow. Pure functions over a
// property snapshot and its existing bookings; no storage access. The
// verdicts here only narrow the dates offered to a client; the
// authoritative conflict check happens at submission time (HTTP 409), so
// nothing in this file may be treated as strongly consistent.

// sameDay reports whether two instants fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// dateOnly truncates an instant to midnight UTC for day-level comparisons.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsDateBlocked applies the property-level rules: the availability window
// (checkinDate/checkoutDate, either may be unset) and the host's explicit
// blocked dates. A missing blocked-date list is treated as empty.
func IsDateBlocked(candidate time.Time, property *models.Property) bool {
	day := dateOnly(candidate)

	if property.CheckinDate != nil && day.Before(dateOnly(*property.CheckinDate)) {
		return true
	}
	if property.CheckoutDate != nil && day.After(dateOnly(*property.CheckoutDate)) {
		return true
	}

	for _, blocked := range property.BlockedDateList() {
		if sameDay(day, blocked) {
			return true
		}
	}

	return false
}

// IsDateWithinBooking reports whether the candidate falls inside any
// confirmed booking's stay. The range is inclusive on BOTH ends: the
// checkout day itself stays unselectable and only the day after opens up.
// (The upstream clients compared inclusively on both ends; that behavior is
// kept until a product decision says otherwise.)
func IsDateWithinBooking(candidate time.Time, bookings []models.Booking) bool {
	day := dateOnly(candidate)

	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.BookingStatusConfirmed {
			continue
		}
		if b.CheckInDate == nil || b.CheckOutDate == nil {
			continue
		}
		start := dateOnly(*b.CheckInDate)
		end := dateOnly(*b.CheckOutDate)
		if !day.Before(start) && !day.After(end) {
			return true
		}
	}

	return false
}

// DisabledDateAt evaluates the full disabled-date predicate against an
// explicit "today". Rules, any true disables the date:
//  1. candidate is before today
//  2. candidate is before the property's availability window opens
//  3. candidate is after the window closes
//  4. candidate is an explicitly blocked date
//  5. candidate falls within a confirmed booking (inclusive both ends)
//
// A nil booking slice is treated as empty: if the fetch has not completed
// the calendar fails open and the backend rejects conflicts at submission.
func DisabledDateAt(today, candidate time.Time, property *models.Property, bookings []models.Booking) bool {
	if dateOnly(candidate).Before(dateOnly(today)) {
		return true
	}
	if IsDateBlocked(candidate, property) {
		return true
	}
	return IsDateWithinBooking(candidate, bookings)
}

// DisabledDate is DisabledDateAt anchored to the current day.
func DisabledDate(candidate time.Time, property *models.Property, bookings []models.Booking) bool {
	return DisabledDateAt(time.Now(), candidate, property, bookings)
}

// CalendarDay is one cell of the availability calendar handed to clients.
type CalendarDay struct {
	Date     string `json:"date"`
	Disabled bool   `json:"disabled"`
}

// CalendarDaysAt materializes the predicate over [from, to] inclusive.
func CalendarDaysAt(today, from, to time.Time, property *models.Property, bookings []models.Booking) []CalendarDay {
	days := []CalendarDay{}
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		days = append(days, CalendarDay{
			Date:     d.Format("2006-01-02"),
			Disabled: DisabledDateAt(today, d, property, bookings),
		})
	}
	return days
}

// CalendarDays is CalendarDaysAt anchored to the current day.
func CalendarDays(from, to time.Time, property *models.Property, bookings []models.Booking) []CalendarDay {
	return CalendarDaysAt(time.Now(), from, to, property, bookings)
}
