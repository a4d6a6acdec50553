package models

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"-"`
	PhoneNumber         string         `json:"phoneNumber"`
	AvatarURL           string         `json:"avatarURL"`
	Bio                 string         `json:"bio"`
	Properties          []Property     `json:"properties" gorm:"foreignKey:UserID;references:ID"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
}

// FullName is the display name shown next to messages.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
