package models

import "time"

// SessionMarker is stored under "session:<email>". Its presence alone means
// the user is online.
type SessionMarker struct {
	LastActive string `json:"lastActive"`
	IsActive   bool   `json:"isActive"`
}

// UserSummary is one row of the admin view.
type UserSummary struct {
	Email      string
	UserName   string
	DeviceName string
	IsLoggedIn bool
	LastActive *time.Time
	Logs       []LogEntry
}
