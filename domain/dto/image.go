package dto

import (
	"time"

	"github.com/google/uuid"
)

// FaceResponse is the DTO for a detected face within an image
type FaceResponse struct {
	ID         uuid.UUID  `json:"id"`
	ImageID    uuid.UUID  `json:"image_id"`
	PersonID   *uuid.UUID `json:"person_id"`
	PersonName string     `json:"person_name,omitempty"`
	Box        [4]int     `json:"box"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ImageResponse is the DTO for image API responses
type ImageResponse struct {
	ID        uuid.UUID      `json:"id"`
	FilePath  string         `json:"file_path"`
	IsSample  bool           `json:"is_sample"`
	Faces     []FaceResponse `json:"faces,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ImageListResponse is the DTO for paginated image search results
type ImageListResponse struct {
	Items []ImageResponse `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Pages int             `json:"pages"`
}

// BatchUploadItemResponse reports one file of a batch upload
type BatchUploadItemResponse struct {
	FileName string         `json:"file_name"`
	Image    *ImageResponse `json:"image,omitempty"`
	Error    string         `json:"error,omitempty"`
}
