package routes

import (
	"strings"
	"time"

	"zerobroker-server/models"
	"zerobroker-server/services"
	"zerobroker-server/storage"
	"zerobroker-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// fallbackDisplayName stands in when a participant's profile cannot be
// resolved; the inbox must render regardless.
const fallbackDisplayName = "User"

// MessageResponse is a message decorated with resolved display names.
type MessageResponse struct {
	ID           uint      `json:"id"`
	SenderID     uint      `json:"senderID"`
	ReceiverID   uint      `json:"receiverID"`
	PropertyID   *uint     `json:"propertyID"`
	Content      string    `json:"content"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
	SenderName   string    `json:"senderName"`
	ReceiverName string    `json:"receiverName"`
}

// CreateMessage is the contact-seller path: one immutable message row from
// the authenticated sender to a receiver, optionally about a property.
func CreateMessage(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Blank content never reaches the store.
	content := strings.TrimSpace(input.Content)
	if content == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Message content is required", ctx)
		return
	}

	if input.ReceiverID == claims.ID {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Cannot send a message to yourself", ctx)
		return
	}

	message := models.Message{
		SenderID:   claims.ID,
		ReceiverID: input.ReceiverID,
		PropertyID: input.PropertyID,
		Content:    content,
	}

	if err := storage.DB.Create(&message).Error; err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to send message. Please try again."})
		return
	}

	// The receiver's live inbox learns about the row through the change
	// channel, never through a direct callback.
	services.NotifyMessageChange(services.MessageChangeEvent{
		Type:       services.MessageChangeInsert,
		ReceiverID: message.ReceiverID,
	})

	go notifyReceiver(message, claims.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(message)
}

// GetInbox returns every message the caller sent or received, newest first,
// each decorated with the participants' display names.
func GetInbox(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var messages []models.Message
	err := storage.DB.
		Where("sender_id = ? OR receiver_id = ?", claims.ID, claims.ID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to load messages"})
		return
	}

	profiles := fetchProfileNames(collectParticipantIDs(messages))
	ctx.JSON(iris.Map{"messages": decorateMessages(messages, profiles)})
}

// MarkMessagesRead flags a batch of received messages as read.
func MarkMessagesRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input MarkMessagesReadInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	err := storage.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND id IN ?", claims.ID, input.MessageIDs).
		Update("is_read", true).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NotifyMessageChange(services.MessageChangeEvent{
		Type:       services.MessageChangeUpdate,
		ReceiverID: claims.ID,
	})

	ctx.JSON(iris.Map{"success": true})
}

// collectParticipantIDs gathers the distinct sender/receiver IDs of a
// message set, in first-seen order.
func collectParticipantIDs(messages []models.Message) []uint {
	seen := make(map[uint]bool, len(messages)*2)
	ids := []uint{}
	for _, message := range messages {
		if !seen[message.SenderID] {
			seen[message.SenderID] = true
			ids = append(ids, message.SenderID)
		}
		if !seen[message.ReceiverID] {
			seen[message.ReceiverID] = true
			ids = append(ids, message.ReceiverID)
		}
	}
	return ids
}

// fetchProfileNames resolves display names for all participants in one
// batched query. Resolution is best effort: a store error yields an empty
// map and every participant renders with the generic fallback label.
func fetchProfileNames(ids []uint) map[uint]string {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	var users []models.User
	err := storage.DB.
		Select("id, first_name, last_name").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return map[uint]string{}
	}

	for i := range users {
		names[users[i].ID] = users[i].FullName()
	}
	return names
}

// decorateMessages attaches display names to messages. Participants with no
// resolvable profile get the generic fallback label; decoration never fails.
func decorateMessages(messages []models.Message, profiles map[uint]string) []MessageResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, MessageResponse{
			ID:           message.ID,
			SenderID:     message.SenderID,
			ReceiverID:   message.ReceiverID,
			PropertyID:   message.PropertyID,
			Content:      message.Content,
			IsRead:       message.IsRead,
			CreatedAt:    message.CreatedAt,
			SenderName:   displayName(profiles, message.SenderID),
			ReceiverName: displayName(profiles, message.ReceiverID),
		})
	}
	return responses
}

func displayName(profiles map[uint]string, id uint) string {
	if name := profiles[id]; name != "" {
		return name
	}
	return fallbackDisplayName
}

// notifyReceiver pushes a best-effort notification about a new message.
func notifyReceiver(message models.Message, senderID uint) {
	var sender models.User
	if err := storage.DB.First(&sender, senderID).Error; err != nil {
		return
	}

	propertyTitle := ""
	if message.PropertyID != nil {
		var property models.Property
		if err := storage.DB.First(&property, *message.PropertyID).Error; err == nil {
			propertyTitle = property.Title
		}
	}

	notificationService := services.NewNotificationService()
	notificationService.SendMessageNotification(message.ReceiverID, senderID, sender.FullName(), propertyTitle)
}

type CreateMessageInput struct {
	ReceiverID uint   `json:"receiverID" validate:"required"`
	PropertyID *uint  `json:"propertyID"`
	Content    string `json:"content" validate:"max=5000"`
}

type MarkMessagesReadInput struct {
	MessageIDs []uint `json:"messageIDs" validate:"required,min=1"`
}
