package services

import (
	"errors"
	"testing"
	"time"

	"homestead-server/models"
)

func flexibleProperty() *models.Property {
	return &models.Property{
		ListingType:      models.ListingTypeRent,
		RentDurationType: models.RentDurationFlexible,
		Price:            100,
	}
}

func saleProperty() *models.Property {
	return &models.Property{
		ListingType: models.ListingTypeSell,
	}
}

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name     string
		listing  models.ListingType
		duration models.RentDurationType
		want     BookingMode
	}{
		{"flexible rental", models.ListingTypeRent, models.RentDurationFlexible, ModeFlexibleRange},
		{"monthly rental", models.ListingTypeRent, models.RentDurationMonthly, ModeAppointment},
		{"yearly rental", models.ListingTypeRent, models.RentDurationYearly, ModeAppointment},
		{"sale", models.ListingTypeSell, "", ModeAppointment},
		{"sale with stray duration", models.ListingTypeSell, models.RentDurationFlexible, ModeAppointment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Property{ListingType: tt.listing, RentDurationType: tt.duration}
			if got := SelectMode(p); got != tt.want {
				t.Errorf("SelectMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssembleTermsGateFiresFirst(t *testing.T) {
	// Even with every other field invalid, an unchecked terms box is the
	// error reported.
	userID := uint(7)
	input := SubmissionInput{AgreedToTerms: false}

	_, err := AssembleBookingRequest(flexibleProperty(), &userID, input)
	if !errors.Is(err, ErrTermsNotAccepted) {
		t.Fatalf("expected ErrTermsNotAccepted, got %v", err)
	}

	_, err = AssembleBookingRequest(saleProperty(), &userID, input)
	if !errors.Is(err, ErrTermsNotAccepted) {
		t.Fatalf("expected ErrTermsNotAccepted for sale, got %v", err)
	}
}

func TestAssembleFlexibleStay(t *testing.T) {
	userID := uint(7)
	checkIn := date("2024-06-10")
	checkOut := date("2024-06-13")

	t.Run("missing dates", func(t *testing.T) {
		input := SubmissionInput{AgreedToTerms: true, CheckInDate: &checkIn}
		_, err := AssembleBookingRequest(flexibleProperty(), &userID, input)
		if !errors.Is(err, ErrMissingStayDates) {
			t.Fatalf("expected ErrMissingStayDates, got %v", err)
		}
	})

	t.Run("checkout not after checkin", func(t *testing.T) {
		same := checkIn
		input := SubmissionInput{AgreedToTerms: true, CheckInDate: &checkIn, CheckOutDate: &same}
		_, err := AssembleBookingRequest(flexibleProperty(), &userID, input)
		if !errors.Is(err, ErrInvalidStayRange) {
			t.Fatalf("expected ErrInvalidStayRange, got %v", err)
		}
	})

	t.Run("valid stay produces only the flexible shape", func(t *testing.T) {
		input := SubmissionInput{
			AgreedToTerms: true,
			CheckInDate:   &checkIn,
			CheckOutDate:  &checkOut,
			PaymentMethod: "card",
			Client:        ClientInfo{Name: "Amina", NumberOfGuests: 1},
		}
		req, err := AssembleBookingRequest(flexibleProperty(), &userID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Mode != ModeFlexibleRange {
			t.Errorf("mode = %v, want FLEXIBLE_RANGE", req.Mode)
		}
		if req.FlexibleStay == nil || req.Appointment != nil {
			t.Error("exactly the flexible shape must be set")
		}
		if !req.FlexibleStay.CheckInDate.Equal(checkIn) || !req.FlexibleStay.CheckOutDate.Equal(checkOut) {
			t.Error("stay dates not carried through")
		}
	})
}

func TestAssembleAppointment(t *testing.T) {
	userID := uint(7)
	visit := date("2024-06-10")

	t.Run("missing appointment date", func(t *testing.T) {
		input := SubmissionInput{AgreedToTerms: true}
		_, err := AssembleBookingRequest(saleProperty(), &userID, input)
		if !errors.Is(err, ErrMissingAppointment) {
			t.Fatalf("expected ErrMissingAppointment, got %v", err)
		}
	})

	t.Run("valid appointment produces only the appointment shape", func(t *testing.T) {
		input := SubmissionInput{
			AgreedToTerms:   true,
			AppointmentDate: &visit,
			Client:          ClientInfo{Name: "Samir"},
		}
		req, err := AssembleBookingRequest(saleProperty(), &userID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Mode != ModeAppointment {
			t.Errorf("mode = %v, want APPOINTMENT", req.Mode)
		}
		if req.Appointment == nil || req.FlexibleStay != nil {
			t.Error("exactly the appointment shape must be set")
		}
	})

	t.Run("stray stay dates on appointment property are ignored", func(t *testing.T) {
		checkIn := date("2024-06-10")
		checkOut := date("2024-06-12")
		input := SubmissionInput{
			AgreedToTerms:   true,
			AppointmentDate: &visit,
			CheckInDate:     &checkIn,
			CheckOutDate:    &checkOut,
		}
		req, err := AssembleBookingRequest(saleProperty(), &userID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Mode != ModeAppointment || req.FlexibleStay != nil {
			t.Error("property mode, not the input fields, decides the shape")
		}
	})
}

func TestGuestManifest(t *testing.T) {
	userID := uint(7)
	checkIn := date("2024-06-10")
	checkOut := date("2024-06-13")

	base := SubmissionInput{
		AgreedToTerms: true,
		CheckInDate:   &checkIn,
		CheckOutDate:  &checkOut,
	}

	t.Run("adults recomputed from total guests", func(t *testing.T) {
		input := base
		input.Client = ClientInfo{
			NumberOfGuests:   4,
			NumberOfChildren: 1,
			NumberOfAdults:   99, // stale running counter, must be ignored
			GuestNames:       []string{"B", "C", "D"},
		}
		req, err := AssembleBookingRequest(flexibleProperty(), &userID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := req.FlexibleStay.Client.NumberOfAdults; got != 3 {
			t.Errorf("adults = %d, want 3", got)
		}
	})

	t.Run("missing guest names rejected", func(t *testing.T) {
		input := base
		input.Client = ClientInfo{
			NumberOfGuests:   3,
			NumberOfChildren: 1,
			GuestNames:       []string{"B"}, // needs 2
		}
		_, err := AssembleBookingRequest(flexibleProperty(), &userID, input)
		if !errors.Is(err, ErrGuestManifestMissing) {
			t.Fatalf("expected ErrGuestManifestMissing, got %v", err)
		}
	})

	t.Run("solo booker needs no manifest", func(t *testing.T) {
		input := base
		input.Client = ClientInfo{NumberOfGuests: 1}
		if _, err := AssembleBookingRequest(flexibleProperty(), &userID, input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestBookingRequestToModel(t *testing.T) {
	userID := uint(7)
	checkIn := date("2024-06-10")
	checkOut := date("2024-06-13")

	req := &BookingRequest{
		Mode: ModeFlexibleRange,
		FlexibleStay: &FlexibleStayRequest{
			PropertyID:    42,
			UserID:        &userID,
			CheckInDate:   checkIn,
			CheckOutDate:  checkOut,
			PaymentMethod: "card",
			Client: ClientInfo{
				Name:             "Amina",
				NumberOfAdults:   2,
				NumberOfChildren: 1,
				NumberOfGuests:   3,
				GuestNames:       []string{"B", "C"},
			},
		},
	}

	booking := req.ToModel()

	if booking.Status != models.BookingStatusPending {
		t.Errorf("status = %v, want pending", booking.Status)
	}
	if booking.Kind != models.BookingKindFlexibleRange {
		t.Errorf("kind = %v, want flexible_range", booking.Kind)
	}
	if booking.PropertyID != 42 || booking.UserID == nil || *booking.UserID != 7 {
		t.Error("property/user references not carried through")
	}
	if booking.ExpiresAt.Before(time.Now().Add(23 * time.Hour)) {
		t.Error("expiry window must be 24h out")
	}
	if names := booking.GuestNameList(); len(names) != 2 {
		t.Errorf("guest names = %v, want 2 entries", names)
	}
}

func TestTotalPrice(t *testing.T) {
	userID := uint(7)
	checkIn := date("2024-06-10")
	checkOut := date("2024-06-13")
	property := flexibleProperty()

	stay := &BookingRequest{
		Mode: ModeFlexibleRange,
		FlexibleStay: &FlexibleStayRequest{
			UserID:       &userID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
		},
	}
	if got := stay.TotalPrice(property); got != 300 {
		t.Errorf("3-night stay at 100/night = %v, want 300", got)
	}

	visit := date("2024-06-10")
	appointment := &BookingRequest{
		Mode:        ModeAppointment,
		Appointment: &AppointmentRequest{RequestedDate: visit},
	}
	if got := appointment.TotalPrice(property); got != 0 {
		t.Errorf("appointments carry no upfront charge, got %v", got)
	}
}

func TestSessionTransitions(t *testing.T) {
	t.Run("flexible happy path", func(t *testing.T) {
		s := &BookingSession{State: StateIdle}
		for _, next := range []SessionState{StateDatesSelected, StateAwaitingPayment, StateSubmitting, StateSuccess} {
			if err := s.Transition(next); err != nil {
				t.Fatalf("transition to %s: %v", next, err)
			}
		}
	})

	t.Run("appointment path skips payment", func(t *testing.T) {
		s := &BookingSession{State: StateDatesSelected}
		if err := s.Transition(StateSubmitting); err != nil {
			t.Fatalf("DATES_SELECTED -> SUBMITTING: %v", err)
		}
	})

	t.Run("failed attempt retries from dates selected", func(t *testing.T) {
		s := &BookingSession{State: StateSubmitting}
		if err := s.Transition(StateFailed); err != nil {
			t.Fatalf("SUBMITTING -> FAILED: %v", err)
		}
		if err := s.Transition(StateDatesSelected); err != nil {
			t.Fatalf("FAILED -> DATES_SELECTED: %v", err)
		}
		if err := s.Transition(StateAwaitingPayment); err != nil {
			t.Fatalf("retry through AWAITING_PAYMENT: %v", err)
		}
	})

	t.Run("success is terminal", func(t *testing.T) {
		s := &BookingSession{State: StateSuccess}
		if err := s.Transition(StateDatesSelected); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("no skipping ahead", func(t *testing.T) {
		s := &BookingSession{State: StateIdle}
		if err := s.Transition(StateSubmitting); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("IDLE -> SUBMITTING should fail, got %v", err)
		}
		if s.State != StateIdle {
			t.Error("failed transition must not change state")
		}
	})
}
