package services

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// statuses with errors.Is.
var (
	ErrDetectionFailed     = errors.New("face detection failed")
	ErrNoFaceDetected      = errors.New("no face detected in the uploaded image")
	ErrFaceNotFound        = errors.New("face not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrPersonNotFound      = errors.New("person not found")
	ErrFaceAlreadyAssigned = errors.New("face is already assigned to a person")
	ErrPersonNameTaken     = errors.New("person name already in use")
	ErrInvalidEmbedding    = errors.New("embedding has wrong dimension")
)
