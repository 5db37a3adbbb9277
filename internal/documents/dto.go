package documents

import "time"

// Response is the wire representation of a document.
type Response struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	Tags                []string  `json:"tags"`
	ProjectID           string    `json:"projectId,omitempty"`
	FileURL             string    `json:"fileUrl"`
	FileType            string    `json:"fileType"`
	SizeBytes           int64     `json:"sizeBytes"`
	ManualText          string    `json:"manualText,omitempty"`
	AIProcessed         bool      `json:"aiProcessed"`
	AIProcessingMessage string    `json:"aiProcessingMessage,omitempty"`
	UploadedByName      string    `json:"uploadedByName"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ToResponse converts a document to its wire representation.
func ToResponse(doc Document) Response {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return Response{
		ID:                  doc.ID,
		Title:               doc.Title,
		Description:         doc.Description,
		Category:            doc.Category,
		Tags:                tags,
		ProjectID:           doc.ProjectID,
		FileURL:             doc.FileURL,
		FileType:            doc.FileType,
		SizeBytes:           doc.SizeBytes,
		ManualText:          doc.ManualText,
		AIProcessed:         doc.AIProcessed,
		AIProcessingMessage: doc.AIProcessingMessage,
		UploadedByName:      doc.UploadedByName,
		CreatedAt:           doc.CreatedAt,
	}
}
