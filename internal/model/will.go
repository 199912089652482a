package model

type Will struct {
	ID        string `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"index" json:"-"`
	Title     string `gorm:"not null" json:"title"`
	Content   string `json:"content"` // Free-form JSON document built by the frontend
	Status    string `gorm:"default:draft" json:"status"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}
