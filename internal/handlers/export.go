package handlers

import (
	"fmt"
	"net/http"
	"time"

	"pvfacade/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Export readings as CSV
// @Description  Streams the filtered reading history as a CSV download. Same filters as /temperatures.
// @Tags         exports
// @Produce      text/csv
// @Param        facade_id  query   string  true   "Facade id"  Enums(refrigerada,no_refrigerada)
// @Param        from       query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        to         query   string  false  "End of range. Date-only treated as end of day."
// @Param        type       query   string  false  "Semantic type filter"
// @Success      200   {string}  string  "CSV body"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/exports/csv/readings [get]
// @Security     BearerAuth
func (h *Handler) exportReadingsCSV(c *gin.Context) {
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

	filename := fmt.Sprintf("readings_%s_%s.csv", filter.FacadeID, time.Now().UTC().Format("20060102T150405Z"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	rows, err := h.services.Export.WriteReadingsCSV(ctx, c.Writer, filter)
	if err != nil {
		if isFilterError(err) {
			// Nothing written yet on validation failures; a JSON error is still possible.
			c.Header("Content-Type", "application/json; charset=utf-8")
			c.Header("Content-Disposition", "")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Body may be partially written; log and close.
		if h.log != nil {
			h.log.Errorw("export_csv_failed", "err", err, "facade", filter.FacadeID)
		}
		c.Abort()
		return
	}
	if h.log != nil {
		h.log.Infow("export_csv_done", "facade", filter.FacadeID, "rows", rows)
	}
}
