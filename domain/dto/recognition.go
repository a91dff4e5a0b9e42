package dto

// RecognizedFaceResponse is one face of a recognition probe.
// Box is [x, y, width, height].
type RecognizedFaceResponse struct {
	Box      [4]int  `json:"box"`
	Person   string  `json:"person"`
	Distance float64 `json:"distance"`
}

// RecognizeResponse is the DTO for recognition results
type RecognizeResponse struct {
	Faces []RecognizedFaceResponse `json:"faces"`
}
