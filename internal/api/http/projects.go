package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapa-lotes/lotmap-backend/internal/geometry"
	lotservice "github.com/mapa-lotes/lotmap-backend/internal/lots/service"
	"github.com/mapa-lotes/lotmap-backend/internal/projects/domain"
	"github.com/mapa-lotes/lotmap-backend/internal/projects/service"
)

// ProjectHandler exposes project commands and the polygon-edit
// resolution entry point.
type ProjectHandler struct {
	projects *service.ProjectService
	lots     *lotservice.LotService
}

func NewProjectHandler(projects *service.ProjectService, lots *lotservice.LotService) *ProjectHandler {
	return &ProjectHandler{projects: projects, lots: lots}
}

func (h *ProjectHandler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.PATCH("/:public_id", h.update)
	rg.DELETE("/:public_id", h.delete)
	rg.POST("/:public_id/polygon-edits", h.applyPolygonEdit)
	rg.POST("/:public_id/polygon-edits/resolve", h.resolvePolygon)
}

type createProjectReq struct {
	Name     string        `json:"name"`
	ImageURL string        `json:"image_url"`
	Bounds   domain.Bounds `json:"bounds"`
}

func (h *ProjectHandler) create(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), domain.NewProjectInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Bounds:   req.Bounds,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

type updateProjectReq struct {
	Name     *string        `json:"name"`
	ImageURL *string        `json:"image_url"`
	Bounds   *domain.Bounds `json:"bounds"`
}

func (h *ProjectHandler) update(c *gin.Context) {
	publicID := c.Param("public_id")

	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Update(c.Request.Context(), publicID, domain.ProjectUpdate{
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Bounds:   req.Bounds,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *ProjectHandler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("public_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type polygonEditReq struct {
	Polygon geometry.Polygon `json:"polygon"`
}

// applyPolygonEdit takes raw edited geometry, resolves it against the
// snapshot, and writes it to the matched lot. No match is a 200 with
// lot_id null: the drawing surface treats it as a no-op.
func (h *ProjectHandler) applyPolygonEdit(c *gin.Context) {
	var req polygonEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	lotID, err := h.lots.ApplyPolygonEdit(c.Request.Context(), c.Param("public_id"), req.Polygon)
	if err != nil {
		writeError(c, err)
		return
	}
	if lotID == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "lot_id": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "lot_id": lotID})
}

// resolvePolygon answers which lot a polygon belongs to without
// writing anything.
func (h *ProjectHandler) resolvePolygon(c *gin.Context) {
	var req polygonEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	lotID, ok := h.lots.ResolveEditedPolygon(c.Param("public_id"), req.Polygon)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"ok": true, "lot_id": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "lot_id": lotID})
}
