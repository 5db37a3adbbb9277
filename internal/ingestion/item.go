package ingestion

import "time"

// Class tells whether a file's content can be handed to the processing
// collaborator or is stored as an opaque blob.
type Class string

const (
	ClassAIEligible  Class = "ai_eligible"
	ClassStorageOnly Class = "storage_only"
)

// UploadStatus tracks an item through the upload pipeline.
type UploadStatus string

const (
	UploadReady     UploadStatus = "ready"
	UploadInFlight  UploadStatus = "uploading"
	UploadSucceeded UploadStatus = "uploaded"
	UploadFailed    UploadStatus = "error"
)

// AIStatus tracks an item's processing state. StorageOnly items are
// born in the storage_only status and never leave it.
type AIStatus string

const (
	AIStorageOnly  AIStatus = "storage_only"
	AINotProcessed AIStatus = "not_processed"
	AIProcessing   AIStatus = "processing"
	AIProcessed    AIStatus = "processed"
	AIFailed       AIStatus = "failed"
)

// Item is one staged file inside an ingestion session, together with
// the metadata the user has filled in for it.
type Item struct {
	ID             string       `json:"id"`
	FileName       string       `json:"fileName"`
	SizeBytes      int64        `json:"sizeBytes"`
	FileType       string       `json:"fileType"`
	Class          Class        `json:"class"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	Tags           []string     `json:"tags"`
	ProjectID      string       `json:"projectId"`
	ManualText     string       `json:"manualText,omitempty"`
	UploadStatus   UploadStatus `json:"uploadStatus"`
	UploadProgress int          `json:"uploadProgress"`
	AIStatus       AIStatus     `json:"aiStatus"`
	StatusNote     string       `json:"statusNote,omitempty"`
	StorageKey     string       `json:"-"`
	FileURL        string       `json:"fileUrl,omitempty"`
	DocumentID     string       `json:"documentId,omitempty"`
	AddedAt        time.Time    `json:"addedAt"`
}

// Registered reports whether the item has a persisted document record.
func (it *Item) Registered() bool {
	return it.DocumentID != ""
}
