package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type dateRangeRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// parseDateRange accepts RFC3339 query parameters on GET and a JSON body on
// POST. Anything malformed degrades to the zero value, which the services
// replace with the default window.
func parseDateRange(c *gin.Context) (start, end time.Time) {
	if c.Request.Method == http.MethodPost {
		var req dateRangeRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			return req.StartTime, req.EndTime
		}
		return start, end
	}

	if raw := c.Query("start_time"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			start = t
		}
	}
	if raw := c.Query("end_time"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			end = t
		}
	}
	return start, end
}

func (h *Handler) GetDashboard(c *gin.Context) {
	start, end := parseDateRange(c)

	dash, err := h.dashboardService.GetDashboard(c.Request.Context(), start, end)
	if err != nil {
		h.internalError(c, "Failed to build audit dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *Handler) GetSerilogDashboard(c *gin.Context) {
	start, end := parseDateRange(c)

	dash, err := h.serilogService.GetDashboard(c.Request.Context(), start, end)
	if err != nil {
		h.internalError(c, "Failed to build serilog dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
