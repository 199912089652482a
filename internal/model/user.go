// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"unique; not null"`
	PasswordHash string `gorm:"not null"`
	Verified     bool   `gorm:"default:false"`
	ExpiresAt    *time.Time

	VerificationCodeHash  string `json:"-"`
	VerificationExpiresAt *time.Time

	Recipients []Recipient `gorm:"foreignKey:UserID"`
	Assets     []Asset     `gorm:"foreignKey:UserID"`
	Wills      []Will      `gorm:"foreignKey:UserID"`
}
