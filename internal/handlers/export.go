package handlers

import (
	"net/http"
	"time"

	"logsight/internal/repository"
	"logsight/internal/services"
	"logsight/pkg/analytics"

	"github.com/gin-gonic/gin"
)

func serveExport(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) ExportAuditLogs(c *gin.Context) {
	var req AuditSearchRequest
	_ = c.ShouldBindJSON(&req)

	filter := req.toFilter(time.Now())
	filter.Skip, filter.Take = sanitizePage(req.Skip, req.Take, maxExportRows)
	if req.Take <= 0 {
		filter.Take = maxExportRows
	}

	logs, _, err := h.auditRepo.Search(filter)
	if err != nil {
		h.internalError(c, "Audit log export failed", err)
		return
	}

	file, err := h.exportService.ExportAuditLogs(logs, req.Format)
	if err != nil {
		h.internalError(c, "Audit log export rendering failed", err)
		return
	}
	serveExport(c, file)
}

// ExportRequestLogs dumps the request logs written by the tracking
// middleware. Range comes from query parameters like the GET dashboard.
func (h *Handler) ExportRequestLogs(c *gin.Context) {
	start, end := parseDateRange(c)
	start, end = analytics.ValidateDateRange(start, end, time.Now())

	logs, _, err := h.appLogRepo.Search(repository.LogFilter{
		StartTime: start,
		EndTime:   end,
		Take:      maxExportRows,
	})
	if err != nil {
		h.internalError(c, "Request log export failed", err)
		return
	}

	file, err := h.exportService.ExportApplicationLogs(logs, c.Query("format"))
	if err != nil {
		h.internalError(c, "Request log export rendering failed", err)
		return
	}
	serveExport(c, file)
}

func (h *Handler) ExportLogs(c *gin.Context) {
	var req LogSearchRequest
	_ = c.ShouldBindJSON(&req)

	filter := req.toFilter(time.Now())
	filter.Skip, filter.Take = sanitizePage(req.Skip, req.Take, maxExportRows)
	if req.Take <= 0 {
		filter.Take = maxExportRows
	}

	entries, _, err := h.serilogRepo.Search(filter)
	if err != nil {
		h.internalError(c, "Log export failed", err)
		return
	}

	file, err := h.exportService.ExportSerilogEntries(entries, req.Format)
	if err != nil {
		h.internalError(c, "Log export rendering failed", err)
		return
	}
	serveExport(c, file)
}
