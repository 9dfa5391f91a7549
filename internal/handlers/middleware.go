package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"logsight/internal/models"
	"logsight/internal/services"
	"logsight/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
)

const (
	ctxClientKey      = "api_client"
	ctxCorrelationKey = "correlation_id"
	correlationHeader = "X-Correlation-ID"
)

// APIKeyAuth resolves the calling ApiClient from X-API-Key.
func (h *Handler) APIKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		var client models.ApiClient
		if err := h.db.Where("api_key = ?", apiKey).First(&client).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key"})
			return
		}

		c.Set(ctxClientKey, client)
		c.Next()
	}
}

// RequirePermission gates one endpoint on a single grant.
func (h *Handler) RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get(ctxClientKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}
		client := val.(models.ApiClient)
		if !client.HasPermission(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Permission denied: " + perm})
			return
		}
		c.Next()
	}
}

func (h *Handler) RateLimitMiddleware(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// TrackingMiddleware assigns a correlation id and, after the handler ran,
// queues an audit row and a structured request log entry.
func (h *Handler) TrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(correlationHeader)
		if correlationID == "" {
			correlationID = utils.GenerateCorrelationID()
		}
		c.Set(ctxCorrelationKey, correlationID)
		c.Header(correlationHeader, correlationID)

		start := time.Now()
		c.Next()
		duration := float64(time.Since(start).Microseconds()) / 1000

		clientName := ""
		if val, ok := c.Get(ctxClientKey); ok {
			clientName = val.(models.ApiClient).Name
		}

		var exception string
		if len(c.Errors) > 0 {
			exception = c.Errors.Last().Error()
		}

		ua := user_agent.New(c.Request.UserAgent())
		browserName, browserVer := ua.Browser()
		browserInfo := strings.TrimSpace(browserName + " " + browserVer)

		country := ""
		if h.geoIPService != nil {
			country = h.geoIPService.GetCountry(c.ClientIP())
		}

		serviceName, methodName := auditAction(c)
		h.auditService.RecordAsync(models.AuditLog{
			ClientName:    clientName,
			HTTPMethod:    c.Request.Method,
			URL:           c.Request.URL.Path,
			HTTPStatus:    c.Writer.Status(),
			ExecutionTime: start,
			DurationMs:    duration,
			ClientIP:      c.ClientIP(),
			BrowserInfo:   browserInfo,
			Country:       country,
			CorrelationID: correlationID,
			Exception:     exception,
			Actions: []models.AuditLogAction{
				{ServiceName: serviceName, MethodName: methodName, DurationMs: duration},
			},
		})

		h.requestLogs.RecordAsync(models.ApplicationLog{
			Message:       fmt.Sprintf("%s %s responded %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status()),
			Level:         levelForStatus(c.Writer.Status()),
			Timestamp:     start,
			Exception:     exception,
			Application:   "logsight",
			HTTPMethod:    c.Request.Method,
			RequestPath:   c.Request.URL.Path,
			StatusCode:    c.Writer.Status(),
			DurationMs:    duration,
			CorrelationID: correlationID,
		})
	}
}

// auditAction names the invoked service and method the way consumers of the
// audit log expect: a service per API area, the gin handler as the method.
func auditAction(c *gin.Context) (serviceName, methodName string) {
	serviceName = "LogAnalytics.DashboardAppService"
	if strings.HasPrefix(c.Request.URL.Path, "/api/serilog-analytics") {
		serviceName = "LogAnalytics.SerilogAnalyticsAppService"
	}

	methodName = c.HandlerName()
	if idx := strings.LastIndex(methodName, "."); idx >= 0 {
		methodName = methodName[idx+1:]
	}
	methodName = strings.TrimSuffix(methodName, "-fm")
	return serviceName, methodName
}

func levelForStatus(status int) string {
	switch {
	case status >= 500:
		return models.LevelError
	case status >= 400:
		return models.LevelWarning
	default:
		return models.LevelInformation
	}
}
