package handlers

import (
	"errors"
	"net/http"

	"pvfacade/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errLoadFacades = "failed to load facades"
	errUnknownID   = "unknown facade id"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List facade overviews
// @Description  Every configured facade with its current readings and derived summary.
// @Tags         facades
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, facades"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/facades [get]
// @Security     BearerAuth
func (h *Handler) listFacades(c *gin.Context) {
	list := h.services.Facades.List()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(list),
		"facades": list,
	})
}

// @Summary      Get one facade overview
// @Tags         facades
// @Produce      json
// @Param        id   path      string  true  "Facade id"  Enums(refrigerada,no_refrigerada)
// @Success      200  {object}  service.FacadeOverview
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/facades/{id} [get]
// @Security     BearerAuth
func (h *Handler) getFacade(c *gin.Context) {
	id := c.Param("id")
	ov, err := h.services.Facades.Overview(id)
	if err != nil {
		if errors.Is(err, service.ErrUnknownFacade) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUnknownID})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadFacades, "facade_overview_failed", err, "facade", id)
		return
	}
	c.JSON(http.StatusOK, ov)
}
