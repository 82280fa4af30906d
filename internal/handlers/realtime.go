package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Get raw realtime state
// @Description  The latest snapshot of one facade as the poller holds it, including loading/error flags. A failed poll keeps the previous snapshot alongside the error message.
// @Tags         realtime
// @Produce      json
// @Param        id   path      string  true  "Facade id"
// @Success      200  {object}  models.FacadeRealtime
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/realtime/facades/{id} [get]
// @Security     BearerAuth
func (h *Handler) getRealtime(c *gin.Context) {
	id := c.Param("id")
	st, ok := h.services.Realtime.State(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownID})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Trigger an immediate poll
// @Description  Queues one out-of-schedule fetch for the facade. Returns accepted=false when a poll is already in flight; the pending result will arrive on its own.
// @Tags         realtime
// @Produce      json
// @Param        id   path      string  true  "Facade id"
// @Success      202  {object}  map[string]interface{}  "accepted"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/realtime/facades/{id}/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshFacade(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.services.Realtime.State(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownID})
		return
	}
	accepted := h.services.Realtime.Refresh(id)
	c.JSON(http.StatusAccepted, gin.H{"accepted": accepted})
}
