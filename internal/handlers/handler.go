package handlers

import (
	"log/slog"
	"net/http"

	"logsight/internal/config"
	"logsight/internal/repository"
	"logsight/internal/services"
	"logsight/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handler struct {
	cfg              config.Config
	logger           *slog.Logger
	db               *gorm.DB
	rdb              *redis.Client
	dashboardService *services.DashboardService
	serilogService   *services.SerilogAnalyticsService
	exportService    *services.ExportService
	settingsService  *services.SettingsService
	healthService    *services.HealthService
	auditService     *services.AuditService
	requestLogs      *services.RequestLogService
	geoIPService     *services.GeoIPService
	hub              *ws.Hub
	appLogRepo       *repository.ApplicationLogRepository
	serilogRepo      *repository.SerilogEntryRepository
	auditRepo        *repository.AuditLogRepository
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	dashboardService *services.DashboardService,
	serilogService *services.SerilogAnalyticsService,
	exportService *services.ExportService,
	settingsService *services.SettingsService,
	healthService *services.HealthService,
	auditService *services.AuditService,
	requestLogs *services.RequestLogService,
	geoIPService *services.GeoIPService,
	hub *ws.Hub,
	appLogRepo *repository.ApplicationLogRepository,
	serilogRepo *repository.SerilogEntryRepository,
	auditRepo *repository.AuditLogRepository,
) *Handler {
	return &Handler{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		rdb:              rdb,
		dashboardService: dashboardService,
		serilogService:   serilogService,
		exportService:    exportService,
		settingsService:  settingsService,
		healthService:    healthService,
		auditService:     auditService,
		requestLogs:      requestLogs,
		geoIPService:     geoIPService,
		hub:              hub,
		appLogRepo:       appLogRepo,
		serilogRepo:      serilogRepo,
		auditRepo:        auditRepo,
	}
}

const genericErrorMessage = "An internal error occurred. Please try again later."

// internalError applies the uniform error policy: log with context, answer
// with a fixed message.
func (h *Handler) internalError(c *gin.Context, what string, err error) {
	h.logger.Error(what, "path", c.Request.URL.Path, "error", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": genericErrorMessage})
}
