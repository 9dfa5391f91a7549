package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"logsight/internal/models"
	"logsight/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAPIKeyAuth(t *testing.T) {
	h, _ := setupTestHandler()
	r := setupTestRouter(h)

	t.Run("Missing Key", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/log-analytics/health", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid Key", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/log-analytics/health", "bogus-key", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Key", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/log-analytics/health", adminKey, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTrackingMiddleware(t *testing.T) {
	h, db := setupTestHandler()
	r := setupTestRouter(h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.auditService.Start(ctx)
	go h.requestLogs.Start(ctx)

	t.Run("Audit And Request Log Written", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/log-analytics/health", adminKey, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		// Wait for the workers.
		time.Sleep(150 * time.Millisecond)

		var audit models.AuditLog
		assert.NoError(t, db.Preload("Actions").Order("id desc").First(&audit).Error)
		assert.Equal(t, "admin", audit.ClientName)
		assert.Equal(t, "/api/log-analytics/health", audit.URL)
		assert.Equal(t, 200, audit.HTTPStatus)
		assert.NotEmpty(t, audit.CorrelationID)
		assert.Len(t, audit.Actions, 1)
		assert.Equal(t, "LogAnalytics.DashboardAppService", audit.Actions[0].ServiceName)
		assert.Equal(t, "GetSystemHealth", audit.Actions[0].MethodName)

		var appLog models.ApplicationLog
		assert.NoError(t, db.Order("id desc").First(&appLog).Error)
		assert.Equal(t, models.LevelInformation, appLog.Level)
		assert.Equal(t, audit.CorrelationID, appLog.CorrelationID)
	})

	t.Run("Correlation Header Echoed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/log-analytics/health", nil)
		req.Header.Set("X-API-Key", adminKey)
		req.Header.Set("X-Correlation-ID", "corr-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "corr-123", w.Header().Get("X-Correlation-ID"))
	})

	t.Run("Serilog Area Service Name", func(t *testing.T) {
		doRequest(r, "GET", "/api/serilog-analytics/logs/recent", adminKey, nil)
		time.Sleep(150 * time.Millisecond)

		var audit models.AuditLog
		assert.NoError(t, db.Preload("Actions").Where("url = ?", "/api/serilog-analytics/logs/recent").First(&audit).Error)
		assert.Equal(t, "LogAnalytics.SerilogAnalyticsAppService", audit.Actions[0].ServiceName)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	h, _ := setupTestHandler()
	limiter := services.NewIPRateLimiter(1, 2, h.logger)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(h.RateLimitMiddleware(limiter))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	var lastCode int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ping", nil)
		r.ServeHTTP(w, req)
		lastCode = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
