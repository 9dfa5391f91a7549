package repository

import (
	"time"

	"logsight/internal/models"

	"gorm.io/gorm"
)

// SerilogFilter mirrors LogFilter for the sink table, with levels as the
// sink's numeric codes.
type SerilogFilter struct {
	StartTime    time.Time
	EndTime      time.Time
	Levels       []int
	Contains     string
	Application  string
	HasException *bool
	Skip         int
	Take         int
}

// SerilogEntryRepository is query-only: the table is owned by an external
// logging sink and this codebase never writes it.
type SerilogEntryRepository struct {
	db *gorm.DB
}

func NewSerilogEntryRepository(db *gorm.DB) *SerilogEntryRepository {
	return &SerilogEntryRepository{db: db}
}

func (r *SerilogEntryRepository) applyFilter(f SerilogFilter) *gorm.DB {
	q := r.db.Model(&models.SerilogEntry{})
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
	// The sink stores the source application inside its properties JSON.
	if f.Application != "" {
		q = q.Where("properties LIKE ?", `%"Application":"`+f.Application+`"%`)
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

func (r *SerilogEntryRepository) Search(f SerilogFilter) ([]models.SerilogEntry, int64, error) {
	var total int64
	if err := r.applyFilter(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.SerilogEntry
	err := r.applyFilter(f).
		Order("timestamp desc").
		Offset(f.Skip).
		Limit(f.Take).
		Find(&entries).Error
	return entries, total, err
}

func (r *SerilogEntryRepository) FindInRange(start, end time.Time) ([]models.SerilogEntry, error) {
	var entries []models.SerilogEntry
	err := r.db.
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp asc").
		Find(&entries).Error
	return entries, err
}

func (r *SerilogEntryRepository) CountInRange(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SerilogEntry{}).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Count(&count).Error
	return count, err
}
