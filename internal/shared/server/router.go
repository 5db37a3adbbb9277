package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/deletion"
	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/ingestion"
	"knowledgebase-backend/internal/processing"
	"knowledgebase-backend/internal/quota"
	"knowledgebase-backend/internal/shared/config"
	"knowledgebase-backend/internal/shared/metrics"
	"knowledgebase-backend/internal/shared/server/middleware"
	"knowledgebase-backend/internal/shared/storage/object"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Config            config.Config
	Store             object.ObjectStore
	DocumentHandler   *documents.Handler
	IngestionHandler  *ingestion.Handler
	ProcessingHandler *processing.Handler
	DeletionHandler   *deletion.Handler
	UsageHandler      *quota.Handler
}

// NewRouter builds the gin engine with middleware and routes mounted.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", metrics.Handler())
	engine.GET("/files/*key", serveFile(deps.Store))

	api := engine.Group("/api/v1")
	api.Use(middleware.Identity())

	deps.DocumentHandler.RegisterRoutes(api)
	deps.IngestionHandler.RegisterRoutes(api)
	deps.ProcessingHandler.RegisterRoutes(api)
	deps.DeletionHandler.RegisterRoutes(api)
	deps.UsageHandler.RegisterRoutes(api)

	return engine
}

// serveFile streams stored blobs. Local-store file URLs point here;
// the S3 store hands out direct object URLs instead, so this path only
// sees traffic in local setups.
func serveFile(store object.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if key == "" || strings.Contains(key, "..") {
			c.Status(http.StatusNotFound)
			return
		}
		rc, err := store.Open(c.Request.Context(), key)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		defer rc.Close()
		c.Status(http.StatusOK)
		io.Copy(c.Writer, rc)
	}
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
