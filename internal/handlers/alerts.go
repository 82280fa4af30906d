package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pvfacade/internal/backend"
	"pvfacade/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errLoadAlerts    = "failed to load alert events"
	errLoadAnomalies = "failed to load anomaly report"
)

// parseQueryInt reads an optional positive integer query param; def on absence or junk.
func parseQueryInt(c *gin.Context, key string, def int) int {
	if s := c.Query(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// @Summary      Live threshold alerts
// @Description  Panel-temperature channels of the facade's latest snapshot currently below the configured threshold.
// @Tags         alerts
// @Produce      json
// @Param        facade_id  query   string  true  "Facade id"  Enums(refrigerada,no_refrigerada)
// @Success      200   {object}  map[string]interface{}  "count, alerts"
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/alerts/current [get]
// @Security     BearerAuth
func (h *Handler) getCurrentAlerts(c *gin.Context) {
	id := c.Query("facade_id")
	alerts, err := h.services.Alerts.Current(id)
	if err != nil {
		if errors.Is(err, service.ErrUnknownFacade) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUnknownID})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadAlerts, "alerts_current_failed", err, "facade", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// @Summary      List recorded alert events
// @Description  Persisted threshold alerts, newest first. Optional date range and limit.
// @Tags         alerts
// @Produce      json
// @Param        from   query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        to     query   string  false  "End of range. Date-only treated as end of day."
// @Param        limit  query   int     false  "Max events to return"  example(50)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/alerts/events [get]
// @Security     BearerAuth
func (h *Handler) getAlertEvents(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}

	events, err := h.services.Alerts.Events(ctx, service.AlertFilter{
		Limit: parseQueryInt(c, "limit", 0),
		From:  from,
		To:    to,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadAlerts, "alerts_events_failed", err, "from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Statistical anomaly report
// @Description  Relays the measurement backend's anomaly detection. Backend failures map to the same status classes as polling errors.
// @Tags         alerts
// @Produce      json
// @Param        limit        query   int     false  "Max anomalies"  example(20)
// @Param        facade_type  query   string  false  "Facade type"  Enums(refrigerada,no_refrigerada)
// @Param        hours        query   int     false  "Lookback window in hours"  example(24)
// @Success      200   {object}  models.AnomalyReport
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/alerts/anomalies [get]
// @Security     BearerAuth
func (h *Handler) getAnomalies(c *gin.Context) {
	ctx := c.Request.Context()

	q := service.AnomalyQuery{
		Limit:      parseQueryInt(c, "limit", 0),
		FacadeType: c.Query("facade_type"),
		Hours:      parseQueryInt(c, "hours", 0),
	}
	report, err := h.services.Alerts.Anomalies(ctx, q)
	if err != nil {
		// Surface the backend's own message when the failure is classified.
		if fe, ok := backend.AsFetchError(err); ok {
			h.logAndJSONError(c, http.StatusBadGateway, fe.UserMessage(), "alerts_anomalies_failed", err, "kind", fe.Kind)
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errLoadAnomalies, "alerts_anomalies_failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
