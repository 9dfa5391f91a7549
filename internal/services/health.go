package services

import (
	"context"
	"time"

	"logsight/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SystemHealth is the operator-facing health summary.
type SystemHealth struct {
	Status        string    `json:"status"`
	Database      string    `json:"database"`
	Cache         string    `json:"cache"`
	LogCount      int64     `json:"log_count"`
	AuditLogCount int64     `json:"audit_log_count"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	CheckedAt     time.Time `json:"checked_at"`
}

type HealthService struct {
	db        *gorm.DB
	rdb       *redis.Client
	startedAt time.Time
}

func NewHealthService(db *gorm.DB, rdb *redis.Client) *HealthService {
	return &HealthService{db: db, rdb: rdb, startedAt: time.Now()}
}

// Check pings both backends. A dead cache degrades the status, a dead
// database makes it unhealthy.
func (s *HealthService) Check(ctx context.Context) SystemHealth {
	health := SystemHealth{
		Status:        "healthy",
		Database:      "up",
		Cache:         "up",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		CheckedAt:     time.Now(),
	}

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		health.Database = "down"
		health.Status = "unhealthy"
	} else {
		s.db.Model(&models.ApplicationLog{}).Count(&health.LogCount)
		s.db.Model(&models.AuditLog{}).Count(&health.AuditLogCount)
	}

	if s.rdb == nil || s.rdb.Ping(ctx).Err() != nil {
		health.Cache = "down"
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	return health
}
