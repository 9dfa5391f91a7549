package models

import (
	"time"
)

// AuditLog records one intercepted API request: who called what, how long it
// took and how it ended. Written by the audit middleware worker, read by the
// dashboard aggregation.
type AuditLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ClientName    string    `gorm:"size:80;index" json:"client_name"`
	HTTPMethod    string    `gorm:"size:10" json:"http_method"`
	URL           string    `gorm:"size:255" json:"url"`
	HTTPStatus    int       `gorm:"index" json:"http_status"`
	ExecutionTime time.Time `gorm:"not null;index" json:"execution_time"`
	DurationMs    float64   `json:"duration_ms"`
	ClientIP      string    `gorm:"size:45" json:"client_ip"`
	BrowserInfo   string    `gorm:"size:150" json:"browser_info,omitempty"`
	Country       string    `gorm:"size:100" json:"country,omitempty"`
	CorrelationID string    `gorm:"size:64;index" json:"correlation_id,omitempty"`
	Exception     string    `gorm:"type:text" json:"exception,omitempty"`

	Actions []AuditLogAction `gorm:"foreignKey:AuditLogID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Succeeded follows the dashboard convention: anything below 400 without an
// exception counts as success.
func (a AuditLog) Succeeded() bool {
	return a.HTTPStatus < 400 && a.Exception == ""
}

// AuditLogAction is one service/method invocation nested under an audit row.
type AuditLogAction struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	AuditLogID  uint    `gorm:"not null;index" json:"audit_log_id"`
	ServiceName string  `gorm:"size:150" json:"service_name"`
	MethodName  string  `gorm:"size:100" json:"method_name"`
	Parameters  string  `gorm:"type:text" json:"parameters,omitempty"`
	DurationMs  float64 `json:"duration_ms"`
}

func (AuditLogAction) TableName() string {
	return "audit_log_actions"
}
