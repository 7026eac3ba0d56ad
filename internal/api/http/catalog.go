package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapa-lotes/lotmap-backend/internal/catalog"
)

// CatalogHandler serves the cached snapshot of projects and lots.
type CatalogHandler struct {
	cache *catalog.Cache
}

func NewCatalogHandler(cache *catalog.Cache) *CatalogHandler {
	return &CatalogHandler{cache: cache}
}

func (h *CatalogHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.get)
	rg.POST("/invalidate", h.invalidate)
}

// get returns the snapshot together with its state so the UI can tell
// fresh data from a retained-but-untrusted one.
func (h *CatalogHandler) get(c *gin.Context) {
	projects, state, err := h.cache.Snapshot()

	resp := gin.H{"ok": true, "state": state, "projects": projects}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// invalidate is the manual refresh trigger.
func (h *CatalogHandler) invalidate(c *gin.Context) {
	h.cache.Invalidate()
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}
