package processing

import (
	"context"
	"sync"

	"knowledgebase-backend/internal/ai"
	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/shared/metrics"
	"knowledgebase-backend/internal/shared/telemetry"
)

// TokenChecker is the monthly token ceiling check run before any
// processing starts.
type TokenChecker interface {
	CheckTokens(ctx context.Context) error
}

// Controller runs AI processing for documents. Processing is explicit:
// a run starts only on a user request, never automatically, and a
// failed run stays failed until someone asks again. At most one run per
// document is in flight at a time.
type Controller struct {
	Docs  *documents.Service
	AI    ai.Processor
	Quota TokenChecker

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewController(docs *documents.Service, processor ai.Processor, quota TokenChecker) *Controller {
	return &Controller{
		Docs:     docs,
		AI:       processor,
		Quota:    quota,
		inFlight: make(map[string]struct{}),
	}
}

// Process runs one synchronous processing attempt for the document and
// records the outcome on its record. The token check happens before
// anything changes, so a refusal leaves the document exactly as it was.
func (c *Controller) Process(ctx context.Context, documentID string) (ai.Result, error) {
	doc, err := c.Docs.Get(ctx, documentID)
	if err != nil {
		return ai.Result{}, err
	}
	if !documents.ProcessableFileType(doc.FileType) {
		return ai.Result{}, ErrNotEligible
	}
	if err := c.Quota.CheckTokens(ctx); err != nil {
		return ai.Result{}, err
	}
	if !c.claim(documentID) {
		return ai.Result{}, ErrAlreadyProcessing
	}
	defer c.release(documentID)

	metrics.IncProcessingStarted()
	start := metrics.NowMillis()
	result, err := c.AI.Process(ctx, documentID)
	metrics.ObserveProcessingDurationMs(metrics.NowMillis() - start)

	if err != nil {
		metrics.IncProcessingFailed()
		telemetry.Error("processing_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		if _, serr := c.Docs.SetAIOutcome(ctx, documentID, false, err.Error()); serr != nil {
			telemetry.Error("processing_outcome_write_failed", map[string]any{
				"document_id": documentID,
				"error":       serr.Error(),
			})
		}
		return ai.Result{}, err
	}

	metrics.IncProcessingCompleted()
	if _, serr := c.Docs.SetAIOutcome(ctx, documentID, true, result.Message); serr != nil {
		telemetry.Error("processing_outcome_write_failed", map[string]any{
			"document_id": documentID,
			"error":       serr.Error(),
		})
	}
	return result, nil
}

// InFlight reports whether a run is currently active for the document.
func (c *Controller) InFlight(documentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[documentID]
	return ok
}

func (c *Controller) claim(documentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[documentID]; ok {
		return false
	}
	c.inFlight[documentID] = struct{}{}
	return true
}

func (c *Controller) release(documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, documentID)
}
