package ingestion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/processing"
	"knowledgebase-backend/internal/quota"
	"knowledgebase-backend/internal/shared/server/middleware"
	"knowledgebase-backend/internal/shared/server/respond"
)

// QuotaReader reports the current quota snapshot for the session view.
type QuotaReader interface {
	Check(ctx context.Context) (quota.Snapshot, error)
}

// Handler exposes the staging workflow over HTTP.
type Handler struct {
	Svc   *Service
	Proc  DocumentProcessor
	Quota QuotaReader
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ingestions", h.create)
	rg.GET("/ingestions/:id", h.get)
	rg.DELETE("/ingestions/:id", h.discard)
	rg.POST("/ingestions/:id/files", h.addFiles)
	rg.PATCH("/ingestions/:id/items/:itemID", h.updateItem)
	rg.DELETE("/ingestions/:id/items/:itemID", h.removeItem)
	rg.POST("/ingestions/:id/commit", h.commit)
	rg.POST("/ingestions/:id/items/:itemID/process", h.processItem)
}

type sessionResponse struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []Item          `json:"items"`
	Quota     *quota.Snapshot `json:"quota,omitempty"`
}

func toSessionResponse(sess *Session) sessionResponse {
	items := sess.Snapshot()
	if items == nil {
		items = []Item{}
	}
	return sessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Items:     items,
	}
}

func (h *Handler) create(c *gin.Context) {
	sess := h.Svc.Sessions.Create(
		middleware.UserIDFromContext(c),
		middleware.UserNameFromContext(c),
	)
	respond.Created(c, toSessionResponse(sess))
}

func (h *Handler) get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	resp := toSessionResponse(sess)
	if h.Quota != nil {
		if snap, err := h.Quota.Check(c.Request.Context()); err == nil {
			resp.Quota = &snap
		}
	}
	respond.OK(c, resp)
}

func (h *Handler) discard(c *gin.Context) {
	err := h.Svc.Discard(c.Param("id"), middleware.UserIDFromContext(c))
	if errors.Is(err, ErrSessionNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "ingestion session not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to discard session", nil)
		return
	}
	respond.NoContent(c)
}

type rejectedFile struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// addFiles stages the uploaded files. One bad file never blocks the
// others: the response lists what was accepted and what was rejected.
func (h *Handler) addFiles(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "multipart form expected", nil)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "no files in request", nil)
		return
	}

	accepted := []Item{}
	rejected := []rejectedFile{}
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			rejected = append(rejected, rejectedFile{FileName: fh.Filename, Reason: "file could not be read"})
			continue
		}
		item, err := h.Svc.AddFile(c.Request.Context(), sess, fh.Filename, fh.Size, src)
		src.Close()
		if err != nil {
			var verr *ValidationError
			reason := "staging failed"
			if errors.As(err, &verr) {
				reason = verr.Reason
			}
			rejected = append(rejected, rejectedFile{FileName: fh.Filename, Reason: reason})
			continue
		}
		accepted = append(accepted, item)
	}

	respond.OK(c, gin.H{
		"accepted": accepted,
		"rejected": rejected,
	})
}

type updateItemRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	ProjectID   *string  `json:"projectId"`
	ManualText  *string  `json:"manualText"`
}

func (h *Handler) updateItem(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	item, err := h.Svc.UpdateItem(sess, c.Param("itemID"), ItemEdit{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		ProjectID:   req.ProjectID,
		ManualText:  req.ManualText,
	})
	if err != nil {
		h.writeItemError(c, err)
		return
	}
	respond.OK(c, item)
}

func (h *Handler) removeItem(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.Svc.RemoveItem(sess, c.Param("itemID")); err != nil {
		h.writeItemError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) commit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	summary, err := h.Svc.Commit(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, ErrNoReadyItems) {
			respond.Error(c, http.StatusBadRequest, "no_ready_items", "nothing to commit in this session", nil)
			return
		}
		if IsQuotaExceeded(err) {
			respond.Error(c, http.StatusConflict, "quota_exceeded", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "commit_failed", "commit failed", nil)
		return
	}
	respond.OK(c, gin.H{
		"summary": summary,
		"session": toSessionResponse(sess),
	})
}

func (h *Handler) processItem(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	item, err := h.Svc.ProcessItem(c.Request.Context(), sess, c.Param("itemID"), h.Proc)
	if err != nil {
		var illegal *IllegalTransitionError
		switch {
		case errors.Is(err, ErrItemNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "ingestion item not found", nil)
		case errors.Is(err, ErrItemNotEditable):
			respond.Error(c, http.StatusConflict, "not_committed", "item has no document record yet", nil)
		case errors.As(err, &illegal):
			if illegal.From == string(AIStorageOnly) {
				respond.Error(c, http.StatusBadRequest, "not_processable", "storage-only items are not processed", nil)
				return
			}
			respond.Error(c, http.StatusConflict, "already_processing", "processing is already running for this item", nil)
		default:
			processing.WriteError(c, err)
		}
		return
	}
	respond.OK(c, item)
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	sess, err := h.Svc.Sessions.Get(c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "ingestion session not found", nil)
		return nil, false
	}
	return sess, true
}

func (h *Handler) writeItemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "ingestion item not found", nil)
	case errors.Is(err, ErrItemNotEditable):
		respond.Error(c, http.StatusConflict, "item_locked", "item already has a document record", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "operation failed", nil)
	}
}
