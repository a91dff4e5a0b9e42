package models

import (
	"time"

	"github.com/google/uuid"
)

type Image struct {
	ID uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	// Storage locator returned by the blob store; never interpreted here
	FilePath string `gorm:"not null"`

	// Reference sample (enrollment upload) vs searchable content
	IsSample bool `gorm:"default:false;index"`

	CreatedAt time.Time `gorm:"index"`

	// Relations
	Faces []Face `gorm:"foreignKey:ImageID"`
}

func (Image) TableName() string {
	return "images"
}
