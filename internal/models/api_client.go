package models

import (
	"strings"
	"time"
)

// Permission grants checked per endpoint.
const (
	PermDashboard        = "LogAnalytics.Dashboard"
	PermSerilogDashboard = "LogAnalytics.SerilogDashboard"
	PermViewLogs         = "LogAnalytics.ViewLogs"
	PermSearchLogs       = "LogAnalytics.SearchLogs"
	PermExportLogs       = "LogAnalytics.ExportLogs"
	PermManageConfig     = "LogAnalytics.ManageConfiguration"
	PermAuditView        = "AuditLogs.View"
	PermAuditExport      = "AuditLogs.Export"
	PermAuditDelete      = "AuditLogs.Delete"
)

// ApiClient is an operator credential for the analytics API. Permissions is a
// comma separated list of grants.
type ApiClient struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null;size:80" json:"name"`
	APIKey      string    `gorm:"unique;index;size:36" json:"api_key"`
	Permissions string    `gorm:"type:text" json:"permissions"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ApiClient) TableName() string {
	return "api_clients"
}

// HasPermission checks a single grant. The wildcard grant "*" allows
// everything.
func (c ApiClient) HasPermission(perm string) bool {
	for _, p := range strings.Split(c.Permissions, ",") {
		p = strings.TrimSpace(p)
		if p == "*" || strings.EqualFold(p, perm) {
			return true
		}
	}
	return false
}
