package handlers

import (
	"gorm.io/gorm"

	"face-search/domain/services"
	"face-search/infrastructure/faceapi"
	"face-search/infrastructure/worker"
)

// Services contains all the services needed for handlers
type Services struct {
	ImageService       services.ImageService
	PersonService      services.PersonService
	RecognitionService services.RecognitionService
}

// Infrastructure contains the components health checks look at
type Infrastructure struct {
	DB         *gorm.DB
	FaceClient *faceapi.FaceClient
	Detector   *worker.DetectionPool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Image       *ImageHandler
	Person      *PersonHandler
	Recognition *RecognitionHandler
	Health      *HealthHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services, infra *Infrastructure) *Handlers {
	return &Handlers{
		Image:       NewImageHandler(services.ImageService),
		Person:      NewPersonHandler(services.PersonService),
		Recognition: NewRecognitionHandler(services.RecognitionService),
		Health:      NewHealthHandler(infra.DB, infra.FaceClient, infra.Detector),
	}
}
