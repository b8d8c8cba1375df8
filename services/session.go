package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homestead-server/storage"
	"homestead-server/utils"
)

// Booking session lifecycle. One session per booking attempt:
//
//	IDLE -> DATES_SELECTED -> AWAITING_PAYMENT -> SUBMITTING   (flexible)
//	IDLE -> DATES_SELECTED -> SUBMITTING                       (appointment)
//	SUBMITTING -> SUCCESS | FAILED
//	FAILED -> DATES_SELECTED (retry with same or adjusted input)
//
// SUCCESS is terminal; a new booking starts a fresh session. Flexible drafts
// are parked in Redis between staging and the payment step, so abandoning a
// session leaves no trace beyond an expiring key.

type SessionState string

const (
	StateIdle            SessionState = "IDLE"
	StateDatesSelected   SessionState = "DATES_SELECTED"
	StateAwaitingPayment SessionState = "AWAITING_PAYMENT"
	StateSubmitting      SessionState = "SUBMITTING"
	StateSuccess         SessionState = "SUCCESS"
	StateFailed          SessionState = "FAILED"
)

var sessionTransitions = map[SessionState][]SessionState{
	StateIdle:            {StateDatesSelected},
	StateDatesSelected:   {StateAwaitingPayment, StateSubmitting},
	StateAwaitingPayment: {StateSubmitting},
	StateSubmitting:      {StateSuccess, StateFailed},
	StateFailed:          {StateDatesSelected},
	StateSuccess:         {},
}

var ErrInvalidTransition = errors.New("invalid booking session transition")

// ErrSessionNotFound is returned when a staged draft has expired or was
// abandoned.
var ErrSessionNotFound = errors.New("booking session not found")

// BookingSession carries one staged booking draft through the state machine.
type BookingSession struct {
	ID        string          `json:"id"`
	State     SessionState    `json:"state"`
	Request   *BookingRequest `json:"request"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Transition advances the session, rejecting anything not in the table.
func (s *BookingSession) Transition(next SessionState) error {
	for _, allowed := range sessionTransitions[s.State] {
		if allowed == next {
			s.State = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, next)
}

const sessionKeyPrefix = "booking_session:"

// Staged drafts expire if the payment step never arrives.
const sessionTTL = 30 * time.Minute

var sessionContext = context.Background()

// StageBookingSession parks an assembled flexible-stay request in Redis and
// hands back the session awaiting its payment step.
func StageBookingSession(request *BookingRequest) (*BookingSession, error) {
	session := &BookingSession{
		ID:        utils.GenerateShortToken(16),
		State:     StateIdle,
		Request:   request,
		CreatedAt: time.Now(),
	}
	if err := session.Transition(StateDatesSelected); err != nil {
		return nil, err
	}
	if err := session.Transition(StateAwaitingPayment); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	err = storage.Redis.Set(sessionContext, sessionKeyPrefix+session.ID, payload, sessionTTL).Err()
	if err != nil {
		return nil, err
	}

	return session, nil
}

// LoadBookingSession fetches a staged draft by id.
func LoadBookingSession(id string) (*BookingSession, error) {
	payload, err := storage.Redis.Get(sessionContext, sessionKeyPrefix+id).Result()
	if err != nil {
		return nil, ErrSessionNotFound
	}

	var session BookingSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveBookingSession writes the session back (e.g. after a FAILED attempt
// returns it to DATES_SELECTED for retry).
func SaveBookingSession(session *BookingSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return storage.Redis.Set(sessionContext, sessionKeyPrefix+session.ID, payload, sessionTTL).Err()
}

// DiscardBookingSession drops a staged draft. Closing the booking dialog
// before submission has no other side effects.
func DiscardBookingSession(id string) {
	storage.Redis.Del(sessionContext, sessionKeyPrefix+id)
}
