package documents

import "time"

// Document represents one file in the team collection together with its
// descriptive metadata and AI processing outcome.
type Document struct {
	ID                  string
	Title               string
	Description         string
	Category            string
	Tags                []string
	ProjectID           string
	FileURL             string
	FileType            string
	SizeBytes           int64
	ManualText          string
	AIProcessed         bool
	AIProcessingMessage string
	UploadedByName      string
	CreatedAt           time.Time
}
