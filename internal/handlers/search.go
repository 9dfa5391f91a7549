package handlers

import (
	"net/http"
	"strconv"
	"time"

	"logsight/internal/repository"
	"logsight/pkg/analytics"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 25
	maxPageSize     = 500
	maxExportRows   = 10000
)

// AuditSearchRequest is the audit-log filter DTO. Zero values mean
// "no filter"; out-of-range pagination values fall back to defaults.
type AuditSearchRequest struct {
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	HTTPMethod   string    `json:"http_method"`
	MinStatus    int       `json:"min_status"`
	MaxStatus    int       `json:"max_status"`
	URLContains  string    `json:"url_contains"`
	ClientName   string    `json:"client_name"`
	HasException *bool     `json:"has_exception"`
	Skip         int       `json:"skip"`
	Take         int       `json:"take"`
	Format       string    `json:"format"`
}

// LogSearchRequest is the serilog filter DTO, levels as the sink's codes.
type LogSearchRequest struct {
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Levels       []int     `json:"levels"`
	Contains     string    `json:"contains"`
	Application  string    `json:"application"`
	HasException *bool     `json:"has_exception"`
	Skip         int       `json:"skip"`
	Take         int       `json:"take"`
	Format       string    `json:"format"`
}

func sanitizePage(skip, take, maxTake int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = defaultPageSize
	}
	if take > maxTake {
		take = maxTake
	}
	return skip, take
}

func pagedResponse(c *gin.Context, items any, total int64, skip, take int) {
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_count": total,
		"skip":        skip,
		"take":        take,
		"has_more":    int64(skip+take) < total,
	})
}

func (r AuditSearchRequest) toFilter(now time.Time) repository.AuditFilter {
	start, end := analytics.ValidateDateRange(r.StartTime, r.EndTime, now)
	return repository.AuditFilter{
		StartTime:    start,
		EndTime:      end,
		HTTPMethod:   r.HTTPMethod,
		MinStatus:    r.MinStatus,
		MaxStatus:    r.MaxStatus,
		URLContains:  r.URLContains,
		ClientName:   r.ClientName,
		HasException: r.HasException,
	}
}

func (r LogSearchRequest) toFilter(now time.Time) repository.SerilogFilter {
	start, end := analytics.ValidateDateRange(r.StartTime, r.EndTime, now)
	return repository.SerilogFilter{
		StartTime:    start,
		EndTime:      end,
		Levels:       r.Levels,
		Contains:     r.Contains,
		Application:  r.Application,
		HasException: r.HasException,
	}
}

func (h *Handler) SearchAuditLogs(c *gin.Context) {
	var req AuditSearchRequest
	// A missing or malformed body searches the default window.
	_ = c.ShouldBindJSON(&req)

	filter := req.toFilter(time.Now())
	filter.Skip, filter.Take = sanitizePage(req.Skip, req.Take, maxPageSize)

	logs, total, err := h.auditRepo.Search(filter)
	if err != nil {
		h.internalError(c, "Audit log search failed", err)
		return
	}
	pagedResponse(c, logs, total, filter.Skip, filter.Take)
}

func (h *Handler) SearchLogs(c *gin.Context) {
	var req LogSearchRequest
	_ = c.ShouldBindJSON(&req)

	filter := req.toFilter(time.Now())
	filter.Skip, filter.Take = sanitizePage(req.Skip, req.Take, maxPageSize)

	entries, total, err := h.serilogRepo.Search(filter)
	if err != nil {
		h.internalError(c, "Log search failed", err)
		return
	}
	pagedResponse(c, entries, total, filter.Skip, filter.Take)
}

func parseSkipTake(c *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	take, _ := strconv.Atoi(c.DefaultQuery("take", strconv.Itoa(defaultPageSize)))
	return sanitizePage(skip, take, maxPageSize)
}

func (h *Handler) RecentAuditLogs(c *gin.Context) {
	skip, take := parseSkipTake(c)

	logs, total, err := h.auditRepo.Search(repository.AuditFilter{Skip: skip, Take: take})
	if err != nil {
		h.internalError(c, "Failed to load recent audit logs", err)
		return
	}
	pagedResponse(c, logs, total, skip, take)
}

func (h *Handler) RecentLogs(c *gin.Context) {
	skip, take := parseSkipTake(c)

	entries, total, err := h.serilogRepo.Search(repository.SerilogFilter{Skip: skip, Take: take})
	if err != nil {
		h.internalError(c, "Failed to load recent logs", err)
		return
	}
	pagedResponse(c, entries, total, skip, take)
}
