package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModels(t *testing.T) {
	t.Run("ApplicationLog TableName", func(t *testing.T) {
		assert.Equal(t, "application_logs", ApplicationLog{}.TableName())
	})

	t.Run("SerilogEntry LevelName", func(t *testing.T) {
		assert.Equal(t, "Information", SerilogEntry{Level: SerilogInfo}.LevelName())
		assert.Equal(t, "Fatal", SerilogEntry{Level: SerilogFatal}.LevelName())
		assert.Equal(t, "Unknown", SerilogEntry{Level: 99}.LevelName())
	})

	t.Run("AuditLog Succeeded", func(t *testing.T) {
		assert.True(t, AuditLog{HTTPStatus: 200}.Succeeded())
		assert.False(t, AuditLog{HTTPStatus: 500}.Succeeded())
		assert.False(t, AuditLog{HTTPStatus: 200, Exception: "boom"}.Succeeded())
	})

	t.Run("ApiClient HasPermission", func(t *testing.T) {
		c := ApiClient{Permissions: "LogAnalytics.Dashboard, AuditLogs.View"}
		assert.True(t, c.HasPermission(PermDashboard))
		assert.True(t, c.HasPermission(PermAuditView))
		assert.False(t, c.HasPermission(PermAuditDelete))

		admin := ApiClient{Permissions: "*"}
		assert.True(t, admin.HasPermission(PermManageConfig))
	})

	t.Run("ApplicationLog HasException", func(t *testing.T) {
		assert.False(t, ApplicationLog{}.HasException())
		assert.True(t, ApplicationLog{Exception: "x"}.HasException())
	})
}
