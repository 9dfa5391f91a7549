package handlers

import (
	"net/http"

	"logsight/internal/models"
	"logsight/internal/services"
	"logsight/internal/ws"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Live-refresh hub. Join/leave groups only; data stays on the REST API.
	r.GET("/log-analytics-hub", h.ServeHub)

	api := r.Group("/api")
	api.Use(h.APIKeyAuth())
	api.Use(h.TrackingMiddleware())

	logAnalytics := api.Group("/log-analytics")
	{
		logAnalytics.GET("/dashboard", h.RequirePermission(models.PermDashboard), h.GetDashboard)
		logAnalytics.POST("/dashboard", h.RequirePermission(models.PermDashboard), h.GetDashboard)
		logAnalytics.GET("/health", h.RequirePermission(models.PermDashboard), h.GetSystemHealth)
		logAnalytics.GET("/applications", h.RequirePermission(models.PermViewLogs), h.GetApplications)

		logAnalytics.POST("/audit-logs/search", h.RequirePermission(models.PermAuditView), h.SearchAuditLogs)
		logAnalytics.GET("/audit-logs/recent", h.RequirePermission(models.PermAuditView), h.RecentAuditLogs)
		logAnalytics.POST("/audit-logs/export", h.RequirePermission(models.PermAuditExport), h.ExportAuditLogs)
		logAnalytics.DELETE("/audit-logs", h.RequirePermission(models.PermAuditDelete), h.DeleteOldAuditLogs)
		logAnalytics.GET("/request-logs/export", h.RequirePermission(models.PermExportLogs), h.ExportRequestLogs)

		logAnalytics.GET("/settings", h.RequirePermission(models.PermManageConfig), h.GetSettings)
		logAnalytics.PUT("/settings", h.RequirePermission(models.PermManageConfig), h.UpdateSettings)
	}

	serilog := api.Group("/serilog-analytics")
	{
		serilog.GET("/dashboard", h.RequirePermission(models.PermSerilogDashboard), h.GetSerilogDashboard)
		serilog.POST("/dashboard", h.RequirePermission(models.PermSerilogDashboard), h.GetSerilogDashboard)
		serilog.POST("/logs/search", h.RequirePermission(models.PermSearchLogs), h.SearchLogs)
		serilog.GET("/logs/recent", h.RequirePermission(models.PermViewLogs), h.RecentLogs)
		serilog.POST("/logs/export", h.RequirePermission(models.PermExportLogs), h.ExportLogs)
	}

	return r
}

func (h *Handler) ServeHub(c *gin.Context) {
	if err := ws.Serve(h.hub, h.logger, c.Writer, c.Request); err != nil {
		h.logger.Warn("Hub upgrade failed", "error", err)
	}
}
