package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
)

// writeError maps the command error taxonomy to HTTP statuses:
// validation → 400, authorization → 403, missing record → 404,
// store failure → 502. Store errors keep their detail; the UI shows
// the failure verbatim.
func writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": domain.ErrAdminRequired.Error()})
	case errors.Is(err, domain.ErrLotNotFound), errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case domain.IsStore(err):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}
