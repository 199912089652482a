package model

type Asset struct {
	ID           uint        `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID       string      `json:"-"`
	FileKey      string      `json:"file_key"` // Avoids file name conflicts
	OriginalName string      `json:"name"`     // Original file name before turning it into a special S3 key
	Category     string      `json:"category"` // property, financial, digital, personal
	Format       string      `json:"format"`
	Size         int64       `json:"size"`
	Tags         StringSlice `json:"tags"`
	CreatedAt    int64       `gorm:"not null" json:"created_at"` // Unix millisecond timestamp
}
