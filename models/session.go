package models

import "time"

// Session server-side login session. ID is the opaque cookie token; the
// remaining fields are a snapshot of the user's identity at login.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"index;not null"`
	Email     string    `gorm:"size:255;not null"`
	Name      string    `gorm:"size:100;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// TableName table name
func (Session) TableName() string {
	return "sessions"
}

// IsExpired reports whether the session is past its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
