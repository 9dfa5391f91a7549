package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"logsight/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestExportAuditLogs(t *testing.T) {
	h, _ := setupTestHandler()
	r := setupTestRouter(h)

	assert.NoError(t, h.auditRepo.Create(&models.AuditLog{
		ClientName: "ops", HTTPMethod: "GET", URL: "/api/x",
		HTTPStatus: 200, ExecutionTime: time.Now(), DurationMs: 10,
	}))

	t.Run("CSV Attachment", func(t *testing.T) {
		body := `{"format":"csv"}`
		w := doRequest(r, "POST", "/api/log-analytics/audit-logs/export", adminKey, &body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, w.Body.String(), `"ops"`)
	})

	t.Run("JSON Format", func(t *testing.T) {
		body := `{"format":"json"}`
		w := doRequest(r, "POST", "/api/log-analytics/audit-logs/export", adminKey, &body)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("Unknown Format Defaults To CSV", func(t *testing.T) {
		body := `{"format":"xlsx"}`
		w := doRequest(r, "POST", "/api/log-analytics/audit-logs/export", adminKey, &body)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), ".csv"))
	})

	t.Run("Viewer Cannot Export", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/log-analytics/audit-logs/export", viewerKey, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestExportLogs(t *testing.T) {
	h, db := setupTestHandler()
	r := setupTestRouter(h)

	db.Create(&models.SerilogEntry{Message: `odd "message"`, Level: models.SerilogWarning, Timestamp: time.Now()})

	t.Run("CSV Escapes Quotes", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/serilog-analytics/logs/export", adminKey, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `""message""`)
	})
}

func TestExportRequestLogs(t *testing.T) {
	h, _ := setupTestHandler()
	r := setupTestRouter(h)

	assert.NoError(t, h.appLogRepo.Create(&models.ApplicationLog{
		Timestamp: time.Now(), Level: models.LevelError,
		Message: "upstream timeout", Application: "Billing", DurationMs: 1200,
	}))

	t.Run("Default CSV", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/log-analytics/request-logs/export", adminKey, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Body.String(), `"upstream timeout"`)
	})

	t.Run("JSON Via Query", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/log-analytics/request-logs/export?format=json", adminKey, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.Contains(t, w.Body.String(), `"Billing"`)
	})

	t.Run("Viewer Cannot Export", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/log-analytics/request-logs/export", viewerKey, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
