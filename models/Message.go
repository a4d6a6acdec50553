package models

import (
	"gorm.io/gorm"
)

// Message is one buyer/seller message. Rows are immutable after creation
// except for the read flag.
type Message struct {
	gorm.Model
	SenderID   uint   `json:"senderID" gorm:"not null;index"`
	ReceiverID uint   `json:"receiverID" gorm:"not null;index"`
	PropertyID *uint  `json:"propertyID" gorm:"index"`
	Content    string `json:"content" gorm:"type:text"`
	IsRead     bool   `json:"isRead" gorm:"default:false;index"`
}
