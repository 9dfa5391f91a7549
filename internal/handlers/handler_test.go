package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"logsight/internal/config"
	"logsight/internal/models"
	"logsight/internal/repository"
	"logsight/internal/services"
	"logsight/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const (
	adminKey  = "11111111-1111-1111-1111-111111111111"
	viewerKey = "22222222-2222-2222-2222-222222222222"
)

func setupTestHandler() (*Handler, *gorm.DB) {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	db.AutoMigrate(
		&models.ApplicationLog{},
		&models.SerilogEntry{},
		&models.AuditLog{},
		&models.AuditLogAction{},
		&models.ApiClient{},
	)

	db.Create(&models.ApiClient{Name: "admin", APIKey: adminKey, Permissions: "*"})
	db.Create(&models.ApiClient{Name: "viewer", APIKey: viewerKey, Permissions: models.PermViewLogs})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{RetentionDays: 30, DashboardCacheTTL: 60}

	appLogRepo := repository.NewApplicationLogRepository(db)
	serilogRepo := repository.NewSerilogEntryRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	dashboard := services.NewDashboardService(auditRepo, nil, logger, services.FixedTTL(time.Minute))
	serilog := services.NewSerilogAnalyticsService(serilogRepo, appLogRepo, nil, logger, services.FixedTTL(time.Minute))
	export := services.NewExportService()
	settings := services.NewSettingsService(nil, logger, cfg)
	health := services.NewHealthService(db, nil)
	audit := services.NewAuditService(auditRepo, logger)
	requestLogs := services.NewRequestLogService(appLogRepo, logger)
	geoIP := services.NewGeoIPService(cfg, logger)
	hub := ws.NewHub(logger)

	h := NewHandler(cfg, logger, db, nil,
		dashboard, serilog, export, settings, health,
		audit, requestLogs, geoIP, hub,
		appLogRepo, serilogRepo, auditRepo,
	)
	return h, db
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}

func doRequest(r *gin.Engine, method, path, apiKey string, body *string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(*body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
