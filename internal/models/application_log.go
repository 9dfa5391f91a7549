package models

import (
	"time"
)

// Log levels as stored in application_logs.level.
const (
	LevelDebug       = "Debug"
	LevelInformation = "Information"
	LevelWarning     = "Warning"
	LevelError       = "Error"
	LevelCritical    = "Critical"
)

// ApplicationLog is one structured log event. Rows are insert-only: the
// request-log worker and the bulk seeder write them, nothing updates them.
type ApplicationLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Level         string    `gorm:"size:20;not null;index" json:"level"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`
	Exception     string    `gorm:"type:text" json:"exception,omitempty"`
	Application   string    `gorm:"size:100;index" json:"application"`
	HTTPMethod    string    `gorm:"size:10" json:"http_method,omitempty"`
	RequestPath   string    `gorm:"size:255" json:"request_path,omitempty"`
	StatusCode    int       `json:"status_code,omitempty"`
	DurationMs    float64   `json:"duration_ms,omitempty"`
	CorrelationID string    `gorm:"size:64;index" json:"correlation_id,omitempty"`
	RequestID     string    `gorm:"size:64" json:"request_id,omitempty"`
}

func (ApplicationLog) TableName() string {
	return "application_logs"
}

// HasException reports whether the row carries exception text.
func (l ApplicationLog) HasException() bool {
	return l.Exception != ""
}
