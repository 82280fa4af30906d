package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pvfacade/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseTimeRange reads the optional from/to query params. If 'to' is date-only
// it is treated as end-of-day inclusive.
func parseTimeRange(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return from, to, false
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return from, to, false
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return from, to, false
	}
	return from, to, true
}

// @Summary      List persisted readings
// @Description  Filter recorded readings by facade, date range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), and semantic type. If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         history
// @Produce      json
// @Param        facade_id  query   string  true   "Facade id"  Enums(refrigerada,no_refrigerada)
// @Param        from       query   string  false  "Start of range"  example(2025-06-01)
// @Param        to         query   string  false  "End of range. Date-only treated as end of day."  example(2025-06-30)
// @Param        type       query   string  false  "Semantic type"  Enums(temperature_panel,irradiance,wind_speed,humidity,ambient_temperature,pressure,flow,refrigerant_temperature,system_status)
// @Success      200   {object}  map[string]interface{}  "count, readings"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/temperatures [get]
// @Security     BearerAuth
func (h *Handler) getTemperatures(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}

	filter := service.HistoryFilter{
		FacadeID: c.Query("facade_id"),
		From:     from,
		To:       to,
		Type:     c.Query("type"),
	}
	readings, err := h.services.History.List(ctx, filter)
	if err != nil {
		if isFilterError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load readings", "history_list_failed",
			err, "facade", filter.FacadeID, "from", from, "to", to, "type", filter.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// isFilterError reports whether err came from request validation rather than storage.
func isFilterError(err error) bool {
	return errors.Is(err, service.ErrMissingFacadeID) || errors.Is(err, service.ErrInvalidTimeRange)
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-06-01T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
