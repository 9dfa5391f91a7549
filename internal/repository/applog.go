package repository

import (
	"time"

	"logsight/internal/models"

	"gorm.io/gorm"
)

// LogFilter is the optional predicate set for application-log searches.
// Zero values mean "not filtered".
type LogFilter struct {
	StartTime    time.Time
	EndTime      time.Time
	Levels       []string
	Contains     string
	Application  string
	HasException *bool
	Skip         int
	Take         int
}

type ApplicationLogRepository struct {
	db *gorm.DB
}

func NewApplicationLogRepository(db *gorm.DB) *ApplicationLogRepository {
	return &ApplicationLogRepository{db: db}
}

func (r *ApplicationLogRepository) applyFilter(f LogFilter) *gorm.DB {
	q := r.db.Model(&models.ApplicationLog{})
	if !f.StartTime.IsZero() {
		q = q.Where("timestamp >= ?", f.StartTime)
	}
	if !f.EndTime.IsZero() {
		q = q.Where("timestamp <= ?", f.EndTime)
	}
	if len(f.Levels) > 0 {
		q = q.Where("level IN ?", f.Levels)
	}
	if f.Contains != "" {
		q = q.Where("message LIKE ?", "%"+f.Contains+"%")
	}
	if f.Application != "" {
		q = q.Where("application = ?", f.Application)
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

// Search returns one page of matching rows, newest first, plus the total
// match count.
func (r *ApplicationLogRepository) Search(f LogFilter) ([]models.ApplicationLog, int64, error) {
	var total int64
	if err := r.applyFilter(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.ApplicationLog
	err := r.applyFilter(f).
		Order("timestamp desc").
		Offset(f.Skip).
		Limit(f.Take).
		Find(&logs).Error
	return logs, total, err
}

// FindInRange loads every row in the window, oldest first. The dashboard
// aggregates these in memory.
func (r *ApplicationLogRepository) FindInRange(start, end time.Time) ([]models.ApplicationLog, error) {
	var logs []models.ApplicationLog
	err := r.db.
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp asc").
		Find(&logs).Error
	return logs, err
}

func (r *ApplicationLogRepository) CountInRange(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ApplicationLog{}).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Count(&count).Error
	return count, err
}

// Durations returns the recorded request durations in the window for
// percentile math.
func (r *ApplicationLogRepository) Durations(start, end time.Time) ([]float64, error) {
	var durations []float64
	err := r.db.Model(&models.ApplicationLog{}).
		Where("timestamp >= ? AND timestamp <= ? AND duration_ms > 0", start, end).
		Pluck("duration_ms", &durations).Error
	return durations, err
}

func (r *ApplicationLogRepository) DistinctApplications() ([]string, error) {
	var apps []string
	err := r.db.Model(&models.ApplicationLog{}).
		Where("application <> ''").
		Distinct("application").
		Order("application asc").
		Pluck("application", &apps).Error
	return apps, err
}

func (r *ApplicationLogRepository) Create(log *models.ApplicationLog) error {
	return r.db.Create(log).Error
}

// BulkInsert writes rows with raw parameterized SQL, bypassing GORM hooks.
// Used by the seeder, where per-row hook overhead is unwanted.
func (r *ApplicationLogRepository) BulkInsert(logs []models.ApplicationLog) error {
	const stmt = `INSERT INTO application_logs
		(message, level, timestamp, exception, application, http_method, request_path, status_code, duration_ms, correlation_id, request_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, l := range logs {
			if err := tx.Exec(stmt,
				l.Message, l.Level, l.Timestamp, l.Exception, l.Application,
				l.HTTPMethod, l.RequestPath, l.StatusCode, l.DurationMs,
				l.CorrelationID, l.RequestID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteOlderThan removes rows past the retention cutoff and reports how many.
func (r *ApplicationLogRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("timestamp < ?", cutoff).Delete(&models.ApplicationLog{})
	return res.RowsAffected, res.Error
}
