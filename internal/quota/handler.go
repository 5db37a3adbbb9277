package quota

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/shared/server/respond"
)

// Handler exposes the consumption snapshot the client renders its
// usage meters from.
type Handler struct {
	Gate *Gate
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.usage)
}

func (h *Handler) usage(c *gin.Context) {
	snap, err := h.Gate.Check(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute usage", nil)
		return
	}
	respond.OK(c, snap)
}
