package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"logsight/internal/models"
	"logsight/internal/repository"
	"logsight/pkg/analytics"

	"github.com/redis/go-redis/v9"
)

// PercentileSummary holds the response-time distribution for a window.
type PercentileSummary struct {
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	AvgMs float64 `json:"avg_ms"`
}

// SerilogDashboard is the aggregated view over the sink table, with response
// time percentiles taken from application_logs.
type SerilogDashboard struct {
	TotalCount        int64             `json:"total_count"`
	TodayCount        int64             `json:"today_count"`
	ErrorCount        int64             `json:"error_count"`
	WarningCount      int64             `json:"warning_count"`
	ErrorRate         float64           `json:"error_rate"`
	LogsPerMinute     float64           `json:"logs_per_minute"`
	LevelDistribution []NamedCount      `json:"level_distribution"`
	HourlyBuckets     []HourlyBucket    `json:"hourly_buckets"`
	TopErrorTypes     []NamedCount      `json:"top_error_types"`
	ResponseTimes     PercentileSummary `json:"response_times"`
	StartTime         time.Time         `json:"start_time"`
	EndTime           time.Time         `json:"end_time"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// SerilogAnalyticsService aggregates the externally written sink table and
// enriches the result with duration percentiles from application_logs.
type SerilogAnalyticsService struct {
	serilogRepo *repository.SerilogEntryRepository
	appLogRepo  *repository.ApplicationLogRepository
	rdb         *redis.Client
	logger      *slog.Logger
	cacheTTL    TTLProvider
	now         func() time.Time
}

func NewSerilogAnalyticsService(
	serilogRepo *repository.SerilogEntryRepository,
	appLogRepo *repository.ApplicationLogRepository,
	rdb *redis.Client,
	logger *slog.Logger,
	cacheTTL TTLProvider,
) *SerilogAnalyticsService {
	return &SerilogAnalyticsService{
		serilogRepo: serilogRepo,
		appLogRepo:  appLogRepo,
		rdb:         rdb,
		logger:      logger,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

func (s *SerilogAnalyticsService) GetDashboard(ctx context.Context, start, end time.Time) (*SerilogDashboard, error) {
	now := s.now()
	start, end = analytics.ValidateDateRange(start, end, now)

	key := cacheKey("serilog", start, end)
	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var dash SerilogDashboard
			if err := json.Unmarshal(data, &dash); err == nil {
				return &dash, nil
			}
		}
	}

	total, err := s.serilogRepo.CountInRange(start, end)
	if err != nil {
		return nil, err
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.serilogRepo.CountInRange(todayStart, now)
	if err != nil {
		return nil, err
	}

	entries, err := s.serilogRepo.FindInRange(start, end)
	if err != nil {
		return nil, err
	}

	durations, err := s.appLogRepo.Durations(start, end)
	if err != nil {
		return nil, err
	}

	dash := s.aggregate(entries, durations, start, end, now)
	dash.TotalCount = total
	dash.TodayCount = today

	if s.rdb != nil {
		if data, err := json.Marshal(dash); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.cacheTTL(ctx)).Err(); err != nil {
				s.logger.Warn("Serilog dashboard cache write failed", "error", err)
			}
		}
	}
	return dash, nil
}

func (s *SerilogAnalyticsService) aggregate(entries []models.SerilogEntry, durations []float64, start, end, now time.Time) *SerilogDashboard {
	dash := &SerilogDashboard{
		StartTime:   start,
		EndTime:     end,
		GeneratedAt: now,
	}

	levels := map[string]int64{}
	errorTypes := map[string]int64{}
	buckets := map[time.Time]*HourlyBucket{}

	for _, entry := range entries {
		levels[entry.LevelName()]++
		switch entry.Level {
		case models.SerilogError, models.SerilogFatal:
			dash.ErrorCount++
		case models.SerilogWarning:
			dash.WarningCount++
		}

		hour := analytics.TruncateToHour(entry.Timestamp)
		bucket, ok := buckets[hour]
		if !ok {
			bucket = &HourlyBucket{Hour: hour}
			buckets[hour] = bucket
		}
		bucket.Count++
		if entry.Level >= models.SerilogError {
			bucket.ErrorCount++
		}

		if entry.Exception != "" {
			excType, _ := analytics.ParseException(entry.Exception)
			errorTypes[excType]++
		}
	}

	dash.ErrorRate = analytics.Percentage(dash.ErrorCount, int64(len(entries)))
	dash.LogsPerMinute = analytics.RatePerMinute(int64(len(entries)), end.Sub(start))
	dash.LevelDistribution = topCounts(levels, len(levels))
	dash.TopErrorTypes = topCounts(errorTypes, topN)
	dash.HourlyBuckets = sortBuckets(buckets)
	dash.ResponseTimes = summarizeDurations(durations)
	return dash
}

func summarizeDurations(durations []float64) PercentileSummary {
	summary := PercentileSummary{
		P50: analytics.Percentile(durations, 0.50),
		P90: analytics.Percentile(durations, 0.90),
		P95: analytics.Percentile(durations, 0.95),
		P99: analytics.Percentile(durations, 0.99),
	}
	if len(durations) > 0 {
		var sum float64
		for _, d := range durations {
			sum += d
		}
		summary.AvgMs = sum / float64(len(durations))
	}
	return summary
}
