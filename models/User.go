package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	PhoneNumber         string         `json:"phoneNumber"`
	Password            string         `json:"password"`
	SocialLogin         bool           `json:"socialLogin"`
	SocialProvider      string         `json:"socialProvider"`
	AvatarURL           string         `json:"avatarURL"`
	Address             string         `json:"address"`
	Properties          []Property     `json:"properties" gorm:"foreignKey:HostID;references:ID"`
	Bookings            []Booking      `json:"bookings" gorm:"foreignKey:UserID;references:ID"`
	SavedProperties     datatypes.JSON `json:"savedProperties"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, host, admin, super_admin
}

// Custom JSON marshaling so JSON columns come out as arrays, never as
// base64 strings, and the password hash never leaves the server.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		SavedProperties []int    `json:"savedProperties,omitempty"`
		PushTokens      []string `json:"pushTokens,omitempty"`
		Password        string   `json:"password,omitempty"`
		*Alias
	}{
		SavedProperties: []int{},
		PushTokens:      []string{},
		Alias:           (*Alias)(u),
	}

	if u.SavedProperties != nil {
		var savedProperties []int
		if err := json.Unmarshal(u.SavedProperties, &savedProperties); err == nil {
			aux.SavedProperties = savedProperties
		}
	}

	if u.PushTokens != nil {
		var pushTokens []string
		if err := json.Unmarshal(u.PushTokens, &pushTokens); err == nil {
			aux.PushTokens = pushTokens
		}
	}

	// Properties/Bookings are excluded from the alias output only when empty;
	// circular host references are stripped on the Property side.

	return json.Marshal(aux)
}
