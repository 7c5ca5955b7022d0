package models

import "time"

// SystemSender is the synthetic author of system messages (joins, kicks, mutes).
const SystemSender = "system"

// User is a registered account. Credentials are owned by the external auth
// service; this row only carries profile and presence preferences.
type User struct {
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"displayName"`
	Avatar      string    `db:"avatar" json:"avatar,omitempty"`
	Theme       string    `db:"theme" json:"theme"`
	Invisible   bool      `db:"invisible" json:"invisible"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// UserProfile is the public view of a user shared with friends and group members.
type UserProfile struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

// Profile strips private fields from a User.
func (u User) Profile() UserProfile {
	return UserProfile{Username: u.Username, DisplayName: u.DisplayName, Avatar: u.Avatar}
}

// SettingsUpdate carries a partial settings change; nil fields are untouched.
type SettingsUpdate struct {
	DisplayName *string `json:"displayName"`
	Avatar      *string `json:"avatar"`
	Theme       *string `json:"theme"`
	Invisible   *bool   `json:"invisible"`
}
