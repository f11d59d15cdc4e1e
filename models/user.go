package models

import (
	"time"
)

// User is either a registered account or a guest identity provisioned by a
// pre-order. Guests carry no password hash and cannot log in.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	IsGuest      bool      `json:"is_guest" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanAuthenticate reports whether the user has credentials to log in with.
func (u *User) CanAuthenticate() bool {
	return !u.IsGuest && u.PasswordHash != ""
}

// AccessToken is the server-side record of an issued bearer token. Deleting
// the row revokes the token.
type AccessToken struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	User       User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
