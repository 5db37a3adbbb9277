package deletion

import (
	"context"

	"knowledgebase-backend/internal/ai"
	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/shared/metrics"
	"knowledgebase-backend/internal/shared/telemetry"
)

// Coordinator removes documents. AI-derived data cleanup runs first and
// is best effort; the record delete is the authoritative step and its
// outcome decides whether the deletion succeeded. A cleanup failure can
// leave orphaned collaborator data, which is accepted over leaving a
// record the user asked to remove.
type Coordinator struct {
	Docs    *documents.Service
	Cleaner ai.Cleaner
}

// Delete removes one document.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	doc, err := c.Docs.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := c.Cleaner.Cleanup(ctx, id); err != nil {
		metrics.IncAICleanupFailed()
		telemetry.Warn("ai_cleanup_failed", map[string]any{
			"document_id": id,
			"file_type":   doc.FileType,
			"error":       err.Error(),
		})
	}

	if err := c.Docs.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncDocumentDeleted()
	return nil
}

// Result is the per-document outcome of a batch delete.
type Result struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// DeleteBatch removes documents independently: one failure never stops
// the rest.
func (c *Coordinator) DeleteBatch(ctx context.Context, ids []string) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if err := c.Delete(ctx, id); err != nil {
			results = append(results, Result{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, Result{ID: id, Deleted: true})
	}
	return results
}
