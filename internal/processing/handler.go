package processing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/ai"
	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/quota"
	"knowledgebase-backend/internal/shared/server/respond"
)

// Handler exposes the explicit processing trigger.
type Handler struct {
	Ctrl *Controller
	Docs *documents.Service
}

// RegisterRoutes mounts processing routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/process", h.process)
}

func (h *Handler) process(c *gin.Context) {
	id := c.Param("id")
	result, err := h.Ctrl.Process(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	doc, err := h.Docs.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document after processing", nil)
		return
	}
	respond.OK(c, gin.H{
		"document": documents.ToResponse(doc),
		"result":   result,
	})
}

// WriteError maps processing failures onto the error envelope. Shared
// with the ingestion routes, which trigger the same runs per item.
func WriteError(c *gin.Context, err error) {
	var exceeded *quota.ExceededError
	var collab *ai.CollaboratorError
	switch {
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrNotEligible):
		respond.Error(c, http.StatusBadRequest, "not_processable", "this file type cannot be processed", nil)
	case errors.Is(err, ErrAlreadyProcessing):
		respond.Error(c, http.StatusConflict, "already_processing", "processing is already running for this document", nil)
	case errors.As(err, &exceeded):
		respond.Error(c, http.StatusConflict, "quota_exceeded", exceeded.Error(), gin.H{
			"resource": exceeded.Resource,
			"used":     exceeded.Used,
			"max":      exceeded.Max,
		})
	case errors.Is(err, ai.ErrNotConfigured):
		respond.Error(c, http.StatusBadGateway, "ai_unavailable", "AI processing is not configured", nil)
	case ai.IsCircuitOpen(err):
		respond.Error(c, http.StatusBadGateway, "ai_unavailable", "AI processing is temporarily unavailable", nil)
	case errors.As(err, &collab):
		respond.Error(c, http.StatusBadGateway, "ai_failed", collab.Message, nil)
	default:
		respond.Error(c, http.StatusBadGateway, "ai_failed", "processing failed", nil)
	}
}
