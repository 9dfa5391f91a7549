package repository

import (
	"time"

	"logsight/internal/models"

	"gorm.io/gorm"
)

// AuditFilter is the optional predicate set for audit-log searches.
type AuditFilter struct {
	StartTime    time.Time
	EndTime      time.Time
	HTTPMethod   string
	MinStatus    int
	MaxStatus    int
	URLContains  string
	ClientName   string
	HasException *bool
	Skip         int
	Take         int
}

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) applyFilter(f AuditFilter) *gorm.DB {
	q := r.db.Model(&models.AuditLog{})
	if !f.StartTime.IsZero() {
		q = q.Where("execution_time >= ?", f.StartTime)
	}
	if !f.EndTime.IsZero() {
		q = q.Where("execution_time <= ?", f.EndTime)
	}
	if f.HTTPMethod != "" {
		q = q.Where("http_method = ?", f.HTTPMethod)
	}
	if f.MinStatus > 0 {
		q = q.Where("http_status >= ?", f.MinStatus)
	}
	if f.MaxStatus > 0 {
		q = q.Where("http_status <= ?", f.MaxStatus)
	}
	if f.URLContains != "" {
		q = q.Where("url LIKE ?", "%"+f.URLContains+"%")
	}
	if f.ClientName != "" {
		q = q.Where("client_name = ?", f.ClientName)
	}
	if f.HasException != nil {
		if *f.HasException {
			q = q.Where("exception <> ''")
		} else {
			q = q.Where("exception = ''")
		}
	}
	return q
}

func (r *AuditLogRepository) Create(log *models.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *AuditLogRepository) Search(f AuditFilter) ([]models.AuditLog, int64, error) {
	var total int64
	if err := r.applyFilter(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := r.applyFilter(f).
		Preload("Actions").
		Order("execution_time desc").
		Offset(f.Skip).
		Limit(f.Take).
		Find(&logs).Error
	return logs, total, err
}

// FindInRange loads every audit row in the window with its nested actions,
// oldest first, for in-memory dashboard aggregation.
func (r *AuditLogRepository) FindInRange(start, end time.Time) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.
		Preload("Actions").
		Where("execution_time >= ? AND execution_time <= ?", start, end).
		Order("execution_time asc").
		Find(&logs).Error
	return logs, err
}

func (r *AuditLogRepository) CountInRange(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.AuditLog{}).
		Where("execution_time >= ? AND execution_time <= ?", start, end).
		Count(&count).Error
	return count, err
}

// ActionServiceNames returns the distinct service names recorded across
// nested actions. Application names are derived from these by string
// heuristics at query time.
func (r *AuditLogRepository) ActionServiceNames() ([]string, error) {
	var names []string
	err := r.db.Model(&models.AuditLogAction{}).
		Where("service_name <> ''").
		Distinct("service_name").
		Order("service_name asc").
		Pluck("service_name", &names).Error
	return names, err
}

func (r *AuditLogRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	// Actions first: sqlite does not cascade without foreign_keys pragma.
	sub := r.db.Model(&models.AuditLog{}).Where("execution_time < ?", cutoff).Select("id")
	if err := r.db.Where("audit_log_id IN (?)", sub).Delete(&models.AuditLogAction{}).Error; err != nil {
		return 0, err
	}
	res := r.db.Where("execution_time < ?", cutoff).Delete(&models.AuditLog{})
	return res.RowsAffected, res.Error
}
