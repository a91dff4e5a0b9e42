package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Face struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ImageID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Person link (nil = unresolved face)
	PersonID *uuid.UUID `gorm:"type:uuid;index"`

	// Face embedding vector (512 dimensions for InsightFace ArcFace R50)
	Embedding pgvector.Vector `gorm:"type:vector(512);not null"`

	// Bounding box in raw pixel coordinates, top-left / bottom-right
	BoxX1 int `gorm:"not null"`
	BoxY1 int `gorm:"not null"`
	BoxX2 int `gorm:"not null"`
	BoxY2 int `gorm:"not null"`

	CreatedAt time.Time

	// Relations
	Image  Image   `gorm:"foreignKey:ImageID"`
	Person *Person `gorm:"foreignKey:PersonID"`
}

func (Face) TableName() string {
	return "faces"
}

// Box returns the bounding box as [x1, y1, x2, y2].
func (f *Face) Box() [4]int {
	return [4]int{f.BoxX1, f.BoxY1, f.BoxX2, f.BoxY2}
}
