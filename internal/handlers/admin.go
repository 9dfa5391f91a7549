package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"logsight/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSystemHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthService.Check(c.Request.Context()))
}

// GetApplications unions application names seen in audit actions with those
// recorded on the log rows themselves.
func (h *Handler) GetApplications(c *gin.Context) {
	apps, err := h.dashboardService.GetApplications()
	if err != nil {
		h.internalError(c, "Failed to list applications", err)
		return
	}

	logged, err := h.appLogRepo.DistinctApplications()
	if err != nil {
		h.internalError(c, "Failed to list applications", err)
		return
	}

	seen := make(map[string]bool, len(apps))
	for _, a := range apps {
		seen[a] = true
	}
	for _, a := range logged {
		if a != "" && !seen[a] {
			seen[a] = true
			apps = append(apps, a)
		}
	}
	sort.Strings(apps)

	if apps == nil {
		apps = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// DeleteOldAuditLogs removes audit rows older than ?days=N, defaulting to the
// configured retention.
func (h *Handler) DeleteOldAuditLogs(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	if days <= 0 {
		days = h.settingsService.Get(c.Request.Context()).RetentionDays
	}

	deleted, err := h.dashboardService.DeleteOlderThan(days)
	if err != nil {
		h.internalError(c, "Audit log deletion failed", err)
		return
	}

	h.hub.Notify("audit-logs-deleted")
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "days": days})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsService.Get(c.Request.Context()))
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req services.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload"})
		return
	}

	updated, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.internalError(c, "Settings update failed", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
