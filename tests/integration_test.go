package tests

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"logsight/internal/config"
	"logsight/internal/handlers"
	"logsight/internal/models"
	"logsight/internal/repository"
	"logsight/internal/services"
	"logsight/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

const apiKey = "33333333-3333-3333-3333-333333333333"

type stack struct {
	router       *gin.Engine
	db           *gorm.DB
	auditService *services.AuditService
	requestLogs  *services.RequestLogService
}

func setupStack(t *testing.T, ctx context.Context) *stack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.ApplicationLog{},
		&models.SerilogEntry{},
		&models.AuditLog{},
		&models.AuditLogAction{},
		&models.ApiClient{},
	))
	db.Create(&models.ApiClient{Name: "integration", APIKey: apiKey, Permissions: "*"})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{AppEnv: "local", RetentionDays: 30, DashboardCacheTTL: 60}

	appLogRepo := repository.NewApplicationLogRepository(db)
	serilogRepo := repository.NewSerilogEntryRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	hub := ws.NewHub(logger)
	audit := services.NewAuditService(auditRepo, logger)
	requestLogs := services.NewRequestLogService(appLogRepo, logger)

	h := handlers.NewHandler(cfg, logger, db, nil,
		services.NewDashboardService(auditRepo, nil, logger, services.FixedTTL(time.Minute)),
		services.NewSerilogAnalyticsService(serilogRepo, appLogRepo, nil, logger, services.FixedTTL(time.Minute)),
		services.NewExportService(),
		services.NewSettingsService(nil, logger, cfg),
		services.NewHealthService(db, nil),
		audit, requestLogs,
		services.NewGeoIPService(cfg, logger),
		hub,
		appLogRepo, serilogRepo, auditRepo,
	)

	go hub.Run(ctx)
	go audit.Start(ctx)
	go requestLogs.Start(ctx)

	gin.SetMode(gin.TestMode)
	return &stack{router: h.SetupRouter(nil), db: db, auditService: audit, requestLogs: requestLogs}
}

func (s *stack) do(method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-API-Key", apiKey)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// The full loop: API calls get audited, audited calls feed the dashboard,
// the dashboard can be exported.
func TestAnalyticsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := setupStack(t, ctx)

	// Generate traffic; each call lands in the audit log via the worker.
	for i := 0; i < 5; i++ {
		w := s.do("GET", "/api/log-analytics/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	time.Sleep(200 * time.Millisecond)

	t.Run("Dashboard Reflects Traffic", func(t *testing.T) {
		w := s.do("GET", "/api/log-analytics/dashboard", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var dash services.AuditDashboard
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
		assert.GreaterOrEqual(t, dash.TotalCount, int64(5))
		assert.Equal(t, "integration", dash.TopClients[0].Name)
	})

	t.Run("Audit Search Finds Tracked Requests", func(t *testing.T) {
		w := s.do("POST", "/api/log-analytics/audit-logs/search", `{"url_contains":"health","take":10}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var page struct {
			TotalCount int64 `json:"total_count"`
			HasMore    bool  `json:"has_more"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.GreaterOrEqual(t, page.TotalCount, int64(5))
	})

	t.Run("Export Audit Trail", func(t *testing.T) {
		w := s.do("POST", "/api/log-analytics/audit-logs/export", `{"format":"csv"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, w.Body.String(), `"integration"`)
	})

	t.Run("Application Log Written Per Request", func(t *testing.T) {
		var count int64
		s.db.Model(&models.ApplicationLog{}).Count(&count)
		assert.GreaterOrEqual(t, count, int64(5))
	})
}

func TestSerilogSurface(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := setupStack(t, ctx)

	now := time.Now()
	s.db.Create(&models.SerilogEntry{Message: "external sink row", Level: models.SerilogError, Timestamp: now, Exception: "SinkError: broken"})

	t.Run("Dashboard", func(t *testing.T) {
		w := s.do("GET", "/api/serilog-analytics/dashboard", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var dash services.SerilogDashboard
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
		assert.Equal(t, int64(1), dash.ErrorCount)
		assert.Equal(t, "SinkError", dash.TopErrorTypes[0].Name)
	})

	t.Run("Export JSON", func(t *testing.T) {
		w := s.do("POST", "/api/serilog-analytics/logs/export", `{"format":"json"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var entries []models.SerilogEntry
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		assert.Len(t, entries, 1)
	})
}
