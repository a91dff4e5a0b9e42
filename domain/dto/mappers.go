package dto

import (
	"face-search/domain/models"
	"face-search/domain/services"
)

func FaceToFaceResponse(face *models.Face) *FaceResponse {
	if face == nil {
		return nil
	}

	resp := &FaceResponse{
		ID:        face.ID,
		ImageID:   face.ImageID,
		PersonID:  face.PersonID,
		Box:       face.Box(),
		CreatedAt: face.CreatedAt,
	}
	if face.Person != nil {
		resp.PersonName = face.Person.Name
	}
	return resp
}

func ImageToImageResponse(image *models.Image) *ImageResponse {
	if image == nil {
		return nil
	}

	resp := &ImageResponse{
		ID:        image.ID,
		FilePath:  image.FilePath,
		IsSample:  image.IsSample,
		CreatedAt: image.CreatedAt,
	}
	for i := range image.Faces {
		resp.Faces = append(resp.Faces, *FaceToFaceResponse(&image.Faces[i]))
	}
	return resp
}

func ImagePageToListResponse(page *services.ImagePage) *ImageListResponse {
	resp := &ImageListResponse{
		Items: make([]ImageResponse, 0, len(page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	}
	for i := range page.Items {
		resp.Items = append(resp.Items, *ImageToImageResponse(&page.Items[i]))
	}
	return resp
}

func PersonToPersonResponse(person *models.Person, faceCount int64) *PersonResponse {
	if person == nil {
		return nil
	}

	return &PersonResponse{
		ID:        person.ID,
		Name:      person.Name,
		FaceCount: faceCount,
		CreatedAt: person.CreatedAt,
	}
}

func RecognizedFacesToResponse(faces []services.RecognizedFace) *RecognizeResponse {
	resp := &RecognizeResponse{Faces: make([]RecognizedFaceResponse, 0, len(faces))}
	for _, f := range faces {
		resp.Faces = append(resp.Faces, RecognizedFaceResponse{
			Box:      f.Box,
			Person:   f.Person,
			Distance: f.Distance,
		})
	}
	return resp
}
