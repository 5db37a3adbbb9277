package deletion

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/shared/server/respond"
)

type Handler struct {
	Coord *Coordinator
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/documents/:id", h.deleteOne)
	rg.POST("/documents/batch-delete", h.deleteBatch)
}

func (h *Handler) deleteOne(c *gin.Context) {
	err := h.Coord.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, documents.ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete_failed", "failed to delete document", nil)
		return
	}
	respond.NoContent(c)
}

type batchDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) deleteBatch(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "ids is required", nil)
		return
	}
	results := h.Coord.DeleteBatch(c.Request.Context(), req.IDs)
	respond.OK(c, gin.H{"results": results})
}
