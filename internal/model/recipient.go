package model

import "time"

// Recipient is a person named in a will. Only the sha256 hash of the
// current verification token is stored, never the token itself.
type Recipient struct {
	ID           string `gorm:"primaryKey" json:"id"`
	UserID       string `gorm:"index" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`

	VerificationCodeHash      string     `json:"-"`
	VerificationExpiresAt     *time.Time `json:"-"`
	VerificationAttempts      int        `gorm:"default:0" json:"-"`
	LastVerificationAttemptAt *time.Time `json:"-"`
	IsVerified                bool       `gorm:"default:false" json:"is_verified"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}
