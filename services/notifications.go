package services

import (
	"encoding/json"
	"fmt"
	"log"

	"zerobroker-server/models"
	"zerobroker-server/storage"
	"zerobroker-server/utils"
)

// NotificationService handles push notification delivery.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// getUserPushTokens retrieves all push tokens for a user.
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

// SendNotificationToUser sends a notification to every device of a user.
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data map[string]string) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		return err
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, data); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// SendMessageNotification notifies a seller/buyer that a new message
// arrived about a property.
func (ns *NotificationService) SendMessageNotification(receiverID, senderID uint, senderName, propertyTitle string) error {
	title := "New Message"
	body := fmt.Sprintf("%s sent you a message", senderName)
	if propertyTitle != "" {
		body = fmt.Sprintf("%s sent you a message about %s", senderName, propertyTitle)
	}

	data := map[string]string{
		"type":     "message",
		"senderId": fmt.Sprintf("%d", senderID),
		"screen":   "Messages",
	}

	return ns.SendNotificationToUser(receiverID, title, body, data)
}
