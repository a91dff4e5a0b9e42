package models

import (
	"time"

	"github.com/google/uuid"
)

type Person struct {
	ID uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	// Human-chosen display name, unique across all persons
	Name string `gorm:"uniqueIndex;not null"`

	CreatedAt time.Time

	// Relations
	Faces []Face `gorm:"foreignKey:PersonID"`
}

func (Person) TableName() string {
	return "persons"
}
