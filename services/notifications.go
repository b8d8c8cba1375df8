package services

import (
	"encoding/json"
	"fmt"
	"log"

	"homestead-server/models"
	"homestead-server/storage"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// NotificationService handles booking-related notifications: in-app rows
// plus Expo push delivery. Called on fire-and-forget goroutines from the
// booking routes.
type NotificationService struct {
	pushClient *expo.PushClient
}

func NewNotificationService() *NotificationService {
	return &NotificationService{pushClient: expo.NewPushClient(nil)}
}

// getUserPushTokens retrieves all push tokens for a user that allows
// notifications.
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

func (ns *NotificationService) push(userID uint, title, body string, data map[string]string) {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("push skipped for user %d: %v", userID, err)
		return
	}

	for _, raw := range tokens {
		pushToken, err := expo.NewExponentPushToken(raw)
		if err != nil {
			log.Printf("invalid push token for user %d: %v", userID, err)
			continue
		}

		response, err := ns.pushClient.Publish(&expo.PushMessage{
			To:       []expo.ExponentPushToken{pushToken},
			Title:    title,
			Body:     body,
			Data:     data,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		})
		if err != nil {
			log.Printf("push publish failed for user %d: %v", userID, err)
			continue
		}
		if err := response.ValidateResponse(); err != nil {
			log.Printf("push rejected for user %d: %v", userID, err)
		}
	}
}

// record persists the in-app notification row.
func (ns *NotificationService) record(userID uint, notifType, title, message string, bookingID uint) {
	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		RefType: "booking",
		RefID:   bookingID,
	}
	storage.DB.Create(&notification)
}

// SendBookingRequestToHost notifies a host about a new pending booking.
func (ns *NotificationService) SendBookingRequestToHost(bookingID, propertyID, hostID uint, clientName, propertyTitle string) {
	title := "New Booking Request"
	message := fmt.Sprintf("%s requested to book %s", clientName, propertyTitle)

	ns.record(hostID, "booking_request", title, message, bookingID)
	ns.push(hostID, title, message, map[string]string{
		"type":       "booking_request",
		"id":         fmt.Sprintf("%d", bookingID),
		"propertyId": fmt.Sprintf("%d", propertyID),
	})
}

// SendBookingStatusToGuest notifies a guest that the host confirmed or
// cancelled their booking.
func (ns *NotificationService) SendBookingStatusToGuest(bookingID, guestID uint, propertyTitle string, status models.BookingStatus) {
	title := "Booking Status Updated"
	message := fmt.Sprintf("Your booking for %s has been %s", propertyTitle, status)

	ns.record(guestID, "booking_status", title, message, bookingID)
	ns.push(guestID, title, message, map[string]string{
		"type": "booking_status",
		"id":   fmt.Sprintf("%d", bookingID),
	})
}
