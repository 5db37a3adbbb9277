package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.update)
}

func (h *Handler) list(c *gin.Context) {
	filter := Filter{
		Search:     c.Query("search"),
		Categories: c.QueryArray("category"),
		Tags:       c.QueryArray("tag"),
		UploadedBy: c.QueryArray("uploadedBy"),
	}
	// "none" selects documents without a project, matching the
	// project filter widget's unassigned option.
	for _, p := range c.QueryArray("project") {
		if p == "none" {
			filter.IncludeUnassigned = true
			continue
		}
		filter.ProjectIDs = append(filter.ProjectIDs, p)
	}

	docs, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to list documents", nil)
		return
	}

	out := make([]Response, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToResponse(doc))
	}
	respond.OK(c, gin.H{"documents": out})
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load document", nil)
		return
	}
	c.Set("documentId", doc.ID)
	respond.OK(c, ToResponse(doc))
}

type updateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	ProjectID   *string  `json:"projectId"`
	ManualText  *string  `json:"manualText"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Update(c.Request.Context(), c.Param("id"), DocumentEdit{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		ProjectID:   req.ProjectID,
		ManualText:  req.ManualText,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "title must not be empty", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to update document", nil)
		}
		return
	}
	c.Set("documentId", doc.ID)
	respond.OK(c, ToResponse(doc))
}
