package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mapa-lotes/lotmap-backend/internal/geometry"
	"github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
	"github.com/mapa-lotes/lotmap-backend/internal/lots/service"
)

// LotHandler exposes the lot command entry points.
type LotHandler struct {
	lots *service.LotService
}

func NewLotHandler(lots *service.LotService) *LotHandler {
	return &LotHandler{lots: lots}
}

func (h *LotHandler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.POST("/:id/reserve", h.reserve)
	rg.POST("/:id/sell", h.sell)
	rg.POST("/:id/release", h.release)
	rg.PUT("/:id/polygon", h.updatePolygon)
	rg.DELETE("/:id", h.delete)
}

func lotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid lot id"})
		return 0, false
	}
	return id, true
}

type createLotReq struct {
	ProjectID string           `json:"project_id"`
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	Polygon   geometry.Polygon `json:"polygon"`
}

func (h *LotHandler) create(c *gin.Context) {
	var req createLotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	lot, err := h.lots.Create(c.Request.Context(), domain.NewLotInput{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Price:     req.Price,
		Polygon:   req.Polygon,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "lot": lot})
}

type reserveReq struct {
	Promoter string `json:"promoter"`
}

func (h *LotHandler) reserve(c *gin.Context) {
	id, ok := lotID(c)
	if !ok {
		return
	}

	var req reserveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.lots.Reserve(c.Request.Context(), id, req.Promoter); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *LotHandler) sell(c *gin.Context) {
	id, ok := lotID(c)
	if !ok {
		return
	}
	if err := h.lots.Sell(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *LotHandler) release(c *gin.Context) {
	id, ok := lotID(c)
	if !ok {
		return
	}
	if err := h.lots.Release(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type polygonReq struct {
	Polygon geometry.Polygon `json:"polygon"`
}

func (h *LotHandler) updatePolygon(c *gin.Context) {
	id, ok := lotID(c)
	if !ok {
		return
	}

	var req polygonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.lots.UpdatePolygon(c.Request.Context(), id, req.Polygon); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *LotHandler) delete(c *gin.Context) {
	id, ok := lotID(c)
	if !ok {
		return
	}
	if err := h.lots.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
