package ingestion

import (
	"context"

	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/shared/metrics"
	"knowledgebase-backend/internal/shared/telemetry"
)

// Registrar turns uploaded items into document records. Registration
// runs per item: an insert failure leaves that item uploaded but
// unbound, so a later commit retries it without re-uploading bytes.
type Registrar struct {
	Docs *documents.Service
}

// Register persists every uploaded, not-yet-registered item in the
// session. It returns how many records it created.
func (r *Registrar) Register(ctx context.Context, sess *Session) int {
	registered := 0
	for _, it := range sess.Snapshot() {
		if it.UploadStatus != UploadSucceeded || it.Registered() {
			continue
		}
		doc, err := r.Docs.Create(ctx, documents.NewDocument{
			Title:          it.Title,
			Description:    it.Description,
			Category:       it.Category,
			Tags:           it.Tags,
			ProjectID:      it.ProjectID,
			FileURL:        it.FileURL,
			FileType:       it.FileType,
			SizeBytes:      it.SizeBytes,
			ManualText:     it.ManualText,
			AIProcessed:    it.Class == ClassStorageOnly,
			UploadedByName: sess.OwnerName,
		})
		if err != nil {
			telemetry.Error("document_register_failed", map[string]any{
				"session_id": sess.ID,
				"item_id":    it.ID,
				"file_name":  it.FileName,
				"error":      err.Error(),
			})
			sess.Apply(it.ID, func(item *Item) error {
				item.StatusNote = "saving the document record failed"
				return nil
			})
			continue
		}
		metrics.IncDocumentRegistered()
		registered++
		sess.Apply(it.ID, func(item *Item) error {
			item.DocumentID = doc.ID
			item.StatusNote = ""
			return nil
		})
	}
	return registered
}
